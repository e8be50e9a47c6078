package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pokeinfo/statehub/internal/config"
)

// CORS lets the browser front end call the API. "*" in allowed_origins
// allows any origin, which cannot be combined with credentials.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return cors.New(c)
}
