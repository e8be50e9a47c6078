package handler

import (
	"github.com/gin-gonic/gin"

	"pokeinfo/statehub/internal/service"
	"pokeinfo/statehub/pkg/response"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start issues a new session token.
func (h *SessionHandler) Start(c *gin.Context) {
	tok, err := h.sessionService.Start(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, tok)
}

// End forgets the session and unmounts its components.
func (h *SessionHandler) End(c *gin.Context) {
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid session context")
		return
	}
	if err := h.sessionService.End(c.Request.Context(), sessionID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
