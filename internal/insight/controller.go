package insight

import (
	"net/http"

	"guardian-angel-api/internal/logs"
	"guardian-angel-api/internal/util"

	"github.com/gin-gonic/gin"
)

type InsightController struct {
	Service    InsightServiceAPI
	LogService logs.LogServiceAPI
}

func (ic *InsightController) GetInsights(c *gin.Context) {
	location := c.Query("location")

	res, err := ic.Service.GetSafetyInsights(c.Request.Context(), location)
	if err != nil {
		ic.logDegraded("insights", err, map[string]interface{}{"location": location})
		c.JSON(http.StatusOK, gin.H{
			"text":     FallbackInsightText,
			"sources":  []interface{}{},
			"degraded": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":     res.Text,
		"sources":  res.Sources,
		"degraded": false,
	})
}

func (ic *InsightController) GetHavens(c *gin.Context) {
	lat, lng, err := util.ParseCoordinates(c.Query("lat"), c.Query("lng"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ic.Service.FindSafeHavens(c.Request.Context(), lat, lng)
	if err != nil {
		ic.logDegraded("havens", err, map[string]interface{}{"latitude": lat, "longitude": lng})
		c.JSON(http.StatusOK, gin.H{
			"text":     "",
			"links":    []GroundingLink{},
			"degraded": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":     res.Text,
		"links":    res.Links,
		"degraded": false,
	})
}

func (ic *InsightController) logDegraded(action string, cause error, meta map[string]interface{}) {
	if ic.LogService == nil {
		return
	}
	_ = ic.LogService.Log(logs.SystemLog{
		Level:   logs.LevelWarn,
		Service: "insight",
		Action:  action,
		Message: cause.Error(),
	}, meta)
}
