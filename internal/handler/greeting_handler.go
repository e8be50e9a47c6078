package handler

import (
	"github.com/gin-gonic/gin"

	"pokeinfo/statehub/internal/service"
	"pokeinfo/statehub/pkg/response"
)

type GreetingHandler struct {
	greetingService service.GreetingService
}

func NewGreetingHandler(greetingService service.GreetingService) *GreetingHandler {
	return &GreetingHandler{greetingService: greetingService}
}

type SetNameRequest struct {
	Name *string `json:"name" binding:"required"`
}

type SetKeyNameRequest struct {
	KeyName string `json:"key_name" binding:"required"`
}

func (h *GreetingHandler) Get(c *gin.Context) {
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid session context")
		return
	}
	g, err := h.greetingService.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, g)
}

// SetName is called on every change of the name input.
func (h *GreetingHandler) SetName(c *gin.Context) {
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid session context")
		return
	}

	var req SetNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	g, err := h.greetingService.SetName(c.Request.Context(), sessionID, *req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, g)
}

func (h *GreetingHandler) SetKeyName(c *gin.Context) {
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid session context")
		return
	}

	var req SetKeyNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	g, err := h.greetingService.SetKeyName(c.Request.Context(), sessionID, req.KeyName)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, g)
}
