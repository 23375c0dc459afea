package instrument

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tessera/internal/metadata"
)

// Middleware records one event per request after the handler chain runs.
// The principal field is filled when the auth middleware has attached one.
func Middleware(r Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		principal := ""
		if p, ok := c.Locals("principal").(*metadata.PrincipalContext); ok && p != nil {
			principal = p.ID
		}
		r.Record(Event{
			Time:       start,
			Method:     c.Method(),
			Path:       c.Path(),
			Status:     c.Response().StatusCode(),
			DurationMs: float64(time.Since(start).Microseconds()) / 1000,
			Principal:  principal,
		})
		return err
	}
}
