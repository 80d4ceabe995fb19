package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/port"
)

var unsafeChars = regexp.MustCompile(`[^\w.\-]+`)

// LocalFileStorage keeps downloaded exports on the local filesystem
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage rooted at baseDir
func NewLocalFileStorage(baseDir string, logger *zap.Logger) *LocalFileStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalFileStorage{baseDir: baseDir, logger: logger}
}

// Save writes content to the relative path
func (s *LocalFileStorage) Save(ctx context.Context, path string, content []byte) error {
	w, err := s.Create(ctx, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	return w.Close()
}

// Create opens the relative path for writing, truncating an existing file
func (s *LocalFileStorage) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	fullPath := s.GetFullPath(path)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		s.logger.Error("Failed to create parent directories", zap.String("path", fullPath), zap.Error(err))
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		s.logger.Error("Failed to open file", zap.String("path", fullPath), zap.Error(err))
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	s.logger.Debug("File opened for writing", zap.String("path", fullPath))
	return f, nil
}

// Exists checks if a file exists at the relative path
func (s *LocalFileStorage) Exists(ctx context.Context, path string) bool {
	_, err := os.Stat(s.GetFullPath(path))
	return err == nil
}

// GetFullPath converts a relative path to full path
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, relativePath)
}

// UniqueName returns a sanitized file name that does not exist yet,
// appending -1, -2, ... before the extension when needed
func (s *LocalFileStorage) UniqueName(ctx context.Context, name string) string {
	name = SanitizeName(name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; s.Exists(ctx, candidate); i++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	return candidate
}

// SanitizeName replaces characters unsafe in file names
func SanitizeName(name string) string {
	name = strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_"), "._")
	if name == "" {
		return "download"
	}
	return name
}

// validatePath checks that the path stays within baseDir
func (s *LocalFileStorage) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

var _ port.FileStorage = (*LocalFileStorage)(nil)
