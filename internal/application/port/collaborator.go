package port

import (
	"context"
	"io"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// NotificationLevel classifies a user-facing message
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelInfo    NotificationLevel = "info"
)

// UserNotification is a single dismissable message shown to the user
type UserNotification struct {
	Level   NotificationLevel
	Message string
}

// Notifier surfaces messages to the user
type Notifier interface {
	Notify(n UserNotification)
}

// Navigator moves the user to another view
type Navigator interface {
	Navigate(view string)
}

// Exporter renders claims into a downloadable document
type Exporter interface {
	Format() string
	ContentType() string
	Export(ctx context.Context, claims []*entity.Claim, w io.Writer) error
}

// FileStorage persists generated files under a base directory
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	// Create opens path for streaming writes, creating parent directories
	Create(ctx context.Context, path string) (io.WriteCloser, error)
	Exists(ctx context.Context, path string) bool
	GetFullPath(relativePath string) string
}
