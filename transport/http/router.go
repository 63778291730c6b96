package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cardex-labs/cardex/service"
)

// RouterConfig carries the transport-level settings.
type RouterConfig struct {
	SecureCookies bool
}

// SetupRouter sets up the Gin router.
func SetupRouter(
	authService *service.AuthService,
	swapService *service.SwapService,
	cfg RouterConfig,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	authHandlers := NewAuthHandlers(authService, cfg.SecureCookies)
	swapHandlers := NewSwapHandlers(swapService)
	commandHandlers := NewCommandHandlers(swapService, logger)

	auth := router.Group("/auth")
	{
		auth.POST("/challenge", authHandlers.Challenge)
		auth.POST("/login", authHandlers.Login)
		auth.GET("/session", authHandlers.Session)
		auth.POST("/reauth", authHandlers.Reauth)
		auth.POST("/logout", authHandlers.Logout)
	}

	api := router.Group("/api")
	api.Use(SessionMiddleware(authService))
	{
		api.GET("/balance", swapHandlers.Balance)
		api.POST("/command", commandHandlers.Dispatch)
	}

	return router
}
