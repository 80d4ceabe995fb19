package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/claimflow/internal/application/export"
	"github.com/garyjia/claimflow/internal/application/service"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/auth"
	domainwf "github.com/garyjia/claimflow/internal/domain/workflow"
)

// Error codes carried in the response envelope
const (
	codeValidation        = "VALIDATION"
	codeReasonRequired    = "REASON_REQUIRED"
	codeInvalidTransition = "INVALID_TRANSITION"
	codeNotFound          = "NOT_FOUND"
	codeForbidden         = "FORBIDDEN"
	codeUnauthorized      = "UNAUTHORIZED"
	codeInternal          = "INTERNAL"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: msg, Code: code})
}

// classify maps an error onto its HTTP status and envelope code
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domainwf.ErrReasonRequired):
		return http.StatusBadRequest, codeReasonRequired
	case errors.Is(err, domainwf.ErrInvalidTransition):
		return http.StatusConflict, codeInvalidTransition
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, domainwf.ErrInvalidState),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, service.ErrNotFound), errors.Is(err, view.ErrUnknownView):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, codeUnauthorized
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func (h *Handlers) fail(c *gin.Context, op string, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" failed", "error", err, "request_id", c.GetString(requestIDKey))
		msg = "internal error"
	}
	abort(c, status, code, msg)
}
