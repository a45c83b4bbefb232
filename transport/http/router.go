package http

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the Gin router
func SetupRouter(h *Handlers) *gin.Engine {
	router := gin.Default()

	router.GET("/health", h.Health)

	// Public paths: browsing profiles and posting mail need no auth.
	router.GET("/profile/:handle", h.GetProfile)
	router.GET("/profiles/owner/:identity", h.OwnerProfiles)
	router.POST("/message", h.PostMessage)

	// Authenticated inbox access.
	router.GET("/challenge", h.GetChallenge)
	router.POST("/inbox", h.PostInbox)

	inbox := router.Group("/inbox")
	inbox.Use(AuthMiddleware(h.tokenizer))
	{
		inbox.GET("/:handle", h.GetInbox)
	}

	return router
}
