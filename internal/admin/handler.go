package admin

import (
	"github.com/gofiber/fiber/v2"

	"tessera/internal/instrument"
	"tessera/internal/metadata"
)

// Handler serves the operator-facing admin surface: the table schema the
// gateway was deployed with and the most recent request events.
type Handler struct {
	table    string
	spec     *metadata.TableSpec
	recorder instrument.Recorder
}

func NewHandler(table string, spec *metadata.TableSpec, rec instrument.Recorder) *Handler {
	return &Handler{table: table, spec: spec, recorder: rec}
}

// RegisterAdminRoutes wires the admin endpoints. The caller decides which
// middleware guards them.
func RegisterAdminRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	grp := app.Group("/api/_admin", middleware...)

	grp.Get("/spec", h.GetSpec)
	grp.Get("/requests", h.ListRequests)
}

// GetSpec handles GET /api/_admin/spec.
func (h *Handler) GetSpec(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"table":      h.table,
		"key_column": h.spec.KeyColumn(),
		"columns":    h.spec.Columns,
	}})
}

// ListRequests handles GET /api/_admin/requests. An optional limit query
// caps the number of events returned, newest first.
func (h *Handler) ListRequests(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	events := h.recorder.Recent(limit)
	if events == nil {
		events = []instrument.Event{}
	}
	return c.JSON(fiber.Map{"data": events, "meta": fiber.Map{"total": len(events)}})
}
