package handlers

import (
	"net/http"

	"linguahub/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency snapshot. It answers 503 when
// Mongo or any Redis is down.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	for _, ok := range status.Redis {
		if !ok {
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, status)
}
