package server

import (
	"errors"
	"net/http"
	"strings"

	obscontext "github.com/dealerstack/vaahan/internal/observability/context"
	"github.com/gin-gonic/gin"
)

const (
	// HeaderActor identifies the operator performing a write. The
	// upstream gateway authenticates the user and forwards the name.
	HeaderActor = "X-Actor"

	contextActorKey = "actor"
)

var errActorRequired = errors.New("actor_required")

// ActorContext lifts the actor header into the gin and request
// contexts. Reads work without one; write handlers call mustActor.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(HeaderActor))
		if actor != "" {
			c.Set(contextActorKey, actor)
			c.Request = c.Request.WithContext(
				obscontext.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

func (s *Server) mustActor(c *gin.Context) (string, bool) {
	actor := c.GetString(contextActorKey)
	if actor == "" {
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: errorPayload{
			Type:    "unauthorized",
			Message: "actor header required",
		}})
		return "", false
	}
	return actor, true
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", payload.Type
	case status == http.StatusConflict:
		return "conflict", payload.Type
	case status == http.StatusNotFound:
		return "not_found", payload.Type
	default:
		return "client", payload.Type
	}
}
