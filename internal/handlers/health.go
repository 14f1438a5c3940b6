package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the database and the identity cache.
type HealthHandler struct {
	db        *gorm.DB
	cacheMode string
}

func NewHealthHandler(db *gorm.DB, cacheMode string) *HealthHandler {
	return &HealthHandler{db: db, cacheMode: cacheMode}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}
	if dbStatus != "ok" {
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "teamtask",
		"components": gin.H{
			"database":       dbStatus,
			"identity_cache": h.cacheMode,
		},
	})
}
