package health

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handlers struct {
	DB    *gorm.DB
	Rdb   *redis.Client
	Start time.Time
}

// JSON handles GET /health/json with a db/redis ping report.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	dbStatus := "disabled"
	if h.DB != nil {
		dbStatus = "up"
		if sqlDB, err := h.DB.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "down"
		}
	}

	redisStatus := "disabled"
	if h.Rdb != nil {
		redisStatus = "up"
		if err := h.Rdb.Ping(c.Context()).Err(); err != nil {
			redisStatus = "down"
		}
	}

	status := "ok"
	if dbStatus == "down" || redisStatus == "down" {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":         status,
		"database":       dbStatus,
		"redis":          redisStatus,
		"uptime_seconds": int64(time.Since(h.Start).Seconds()),
	})
}
