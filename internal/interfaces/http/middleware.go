package http

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyjia/claimflow/internal/auth"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	actorKey        = "actor"
)

// requestID propagates or assigns a request id
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// authenticate resolves the bearer token into the current actor
func authenticate(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}

		actor, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			abort(c, http.StatusUnauthorized, codeUnauthorized, err.Error())
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// requireRoles rejects actors outside roles
func requireRoles(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, currentActor(c).Role) {
			abort(c, http.StatusForbidden, codeForbidden, "role not permitted")
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) entity.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(entity.Actor); ok {
			return a
		}
	}
	return entity.Actor{}
}
