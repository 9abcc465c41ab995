package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// DBPinger abstracts the database health probe.
type DBPinger interface {
	Ping() error
}

// Handlers holds dependencies for the health endpoint.
type Handlers struct {
	Rdb *redis.Client
	DB  DBPinger
}

// Check GET /health — reports per-dependency status. Returns 503 when any
// dependency is unreachable so load balancers can pull the instance.
func (h *Handlers) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if h.DB == nil {
		dbStatus = "not configured"
	} else if err := h.DB.Ping(); err != nil {
		dbStatus = "unreachable"
	}

	redisStatus := "ok"
	if h.Rdb == nil {
		redisStatus = "not configured"
	} else if err := h.Rdb.Ping(ctx).Err(); err != nil {
		redisStatus = "unreachable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unreachable" || redisStatus == "unreachable" {
		status = fiber.StatusServiceUnavailable
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"service": "ledger-api",
		"status":  overall,
		"dependencies": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
