package app

import (
	pbxHandler "ivr-service/internal/handlers/pbx"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	PBXHandler *pbxHandler.PBXHandler
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// PBX-facing surface. Both endpoints answer a menu descriptor.
	r.GET("/call", h.PBXHandler.HandleCall)
	r.GET("/menu/:step", h.PBXHandler.HandleMenuInput)
}
