package voice

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, voiceController *VoiceController) {
	voiceGroup := r.Group("/api/voice")
	{
		voiceGroup.GET("/live", voiceController.Live)
		voiceGroup.GET("/sessions", voiceController.Sessions)
	}
}
