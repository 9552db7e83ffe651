package sos

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, sosService SOSServiceAPI) {
	sosController := &SOSController{Service: sosService}

	r.POST("/api/sos", sosController.Trigger)
	r.GET("/api/sos", sosController.ListAlerts)
}
