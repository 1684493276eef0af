package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookmarket/bookmarket/internal/database"
)

// HealthController reports process and database liveness.
type HealthController struct {
	db *database.Database
}

// NewHealthController creates a new HealthController.
func NewHealthController(db *database.Database) *HealthController {
	return &HealthController{db: db}
}

// Health pings the database.
// GET /health
func (hc *HealthController) Health(c *gin.Context) {
	if err := hc.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
