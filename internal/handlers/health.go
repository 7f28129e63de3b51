package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/database"
	"dayflow/internal/services"
)

// HealthHandler reports liveness and backing-store connectivity.
type HealthHandler struct {
	mongo   *database.MongoDB
	sqlDB   *database.DB
	redis   *services.RedisService
	started time.Time
}

// NewHealthHandler creates a new health handler. Any dependency may be nil
// when that backend is not configured.
func NewHealthHandler(mongo *database.MongoDB, sqlDB *database.DB, redis *services.RedisService) *HealthHandler {
	return &HealthHandler{
		mongo:   mongo,
		sqlDB:   sqlDB,
		redis:   redis,
		started: time.Now(),
	}
}

// Health handles GET /health. Reports each backend as up, down or
// unconfigured; overall status degrades when a configured backend fails.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "ok"
	checks := fiber.Map{}

	if h.mongo != nil {
		if err := h.mongo.Ping(c.Context()); err != nil {
			checks["mongodb"] = "down"
			status = "degraded"
		} else {
			checks["mongodb"] = "up"
		}
	} else {
		checks["mongodb"] = "unconfigured"
	}

	if h.sqlDB != nil {
		if err := h.sqlDB.PingContext(c.Context()); err != nil {
			checks["mysql"] = "down"
			status = "degraded"
		} else {
			checks["mysql"] = "up"
		}
	} else {
		checks["mysql"] = "unconfigured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Context()); err != nil {
			checks["redis"] = "down"
			status = "degraded"
		} else {
			checks["redis"] = "up"
		}
	} else {
		checks["redis"] = "unconfigured"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"checks":  checks,
		"version": "1.0.0",
	})
}
