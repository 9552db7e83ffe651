package insight

import (
	"guardian-angel-api/internal/logs"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, insightService InsightServiceAPI, logService logs.LogServiceAPI) {
	insightController := &InsightController{Service: insightService, LogService: logService}

	api := r.Group("/api")
	{
		api.GET("/insights", insightController.GetInsights)
		api.GET("/havens", insightController.GetHavens)
	}
}
