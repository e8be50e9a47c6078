package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pokeinfo/statehub/internal/service"
	"pokeinfo/statehub/pkg/response"
)

const maxViewWait = 30 * time.Second

type PokemonHandler struct {
	pokemonService service.PokemonService
}

func NewPokemonHandler(pokemonService service.PokemonService) *PokemonHandler {
	return &PokemonHandler{pokemonService: pokemonService}
}

type SubmitPokemonRequest struct {
	Name string `json:"name"`
}

// Submit sets the Pokémon name. An empty name returns the app to idle.
func (h *PokemonHandler) Submit(c *gin.Context) {
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid session context")
		return
	}

	var req SubmitPokemonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	info, err := h.pokemonService.Submit(c.Request.Context(), sessionID, req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, info)
}

// View renders the app. ?wait=true blocks until the current lookup settles.
func (h *PokemonHandler) View(c *gin.Context) {
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid session context")
		return
	}

	wait, _ := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	ctx, cancel := context.WithTimeout(c.Request.Context(), maxViewWait)
	defer cancel()

	info, err := h.pokemonService.View(ctx, sessionID, wait)
	if errors.Is(err, context.DeadlineExceeded) {
		response.RequestTimeout(c, "lookup still pending")
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, info)
}

// Reset is the fallback's "Try Again" action.
func (h *PokemonHandler) Reset(c *gin.Context) {
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid session context")
		return
	}

	info, err := h.pokemonService.Reset(c.Request.Context(), sessionID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, info)
}
