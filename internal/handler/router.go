package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pokeinfo/statehub/internal/config"
	"pokeinfo/statehub/internal/handler/middleware"
	"pokeinfo/statehub/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	sessionService service.SessionService,
	sessionHandler *SessionHandler,
	greetingHandler *GreetingHandler,
	pokemonHandler *PokemonHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	r.POST("/api/v1/session", sessionHandler.Start)

	// Session routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.SessionAuth(sessionService))
	{
		protected.DELETE("/session", sessionHandler.End)

		// Greeting form bound to a persisted name
		protected.GET("/greeting", greetingHandler.Get)
		protected.PUT("/greeting", greetingHandler.SetName)
		protected.PUT("/greeting/key", greetingHandler.SetKeyName)

		// Pokémon lookup wrapped in an error boundary
		protected.GET("/pokemon", pokemonHandler.View)
		protected.POST("/pokemon", pokemonHandler.Submit)
		protected.POST("/pokemon/reset", pokemonHandler.Reset)
	}

	return r
}
