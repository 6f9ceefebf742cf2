package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/edusphere-api/internal/config"
	"github.com/noah-isme/edusphere-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	AIGrading   bool      `json:"ai_grading"`
}

// HealthCheck returns a handler that reports application health information.
// aiEnabled reports whether a completion client was configured at startup.
func HealthCheck(cfg config.Config, aiEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			AIGrading:   aiEnabled,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
