package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pokeinfo/statehub/internal/handler/middleware"
	"pokeinfo/statehub/internal/service"
	"pokeinfo/statehub/pkg/response"
)

var ErrNoSession = errors.New("session not found in context")

func getSessionIDFromContext(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.SessionID(c)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	return id, nil
}

// writeServiceError maps service errors to responses.
func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrInvalidKeyName), errors.Is(err, service.ErrNameTooLong):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrSessionNotReady):
		response.ServiceUnavailable(c, "session store unavailable")
	default:
		response.InternalError(c, "internal server error")
	}
}
