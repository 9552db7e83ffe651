package sos

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"guardian-angel-api/internal/util"

	"github.com/gin-gonic/gin"
)

type SOSController struct {
	Service SOSServiceAPI
}

func (sc *SOSController) Trigger(c *gin.Context) {
	var input TriggerInput
	// An empty body triggers without a location.
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := sc.Service.Trigger(input)
	if err != nil {
		if errors.Is(err, ErrIncompleteLocation) || errors.Is(err, util.ErrInvalidCoordinates) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, alert)
}

func (sc *SOSController) ListAlerts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	alerts, err := sc.Service.ListAlerts(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
