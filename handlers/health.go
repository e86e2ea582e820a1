package handlers

import (
	"net/http"

	"velora/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the latest dependency snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"deps":   status,
	})
}
