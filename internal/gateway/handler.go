package gateway

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"tessera/internal/metadata"
	"tessera/internal/store"
)

// Handler serves the table runtime contract for one synthesized table.
type Handler struct {
	client store.TableClient
	table  string
	filter *RowFilter
}

func NewHandler(client store.TableClient, table string) *Handler {
	return &Handler{client: client, table: table, filter: NewRowFilter()}
}

// RegisterRoutes wires the table API under /api.
func RegisterRoutes(app *fiber.App, h *Handler, authMW fiber.Handler) {
	api := app.Group("/api", authMW)

	api.Get("/rows", h.List)
	api.Get("/rows/:key", h.Get)
	api.Post("/rows/:key", h.Insert)
	api.Put("/rows/:key", h.Update)
	api.Delete("/rows/:key", h.Delete)
}

// List handles GET /api/rows. An optional filter expression is evaluated
// against each row; rows that fail it are dropped from the response.
func (h *Handler) List(c *fiber.Ctx) error {
	if err := requireOperation(c, metadata.OpList); err != nil {
		return err
	}

	rows, err := h.client.List(c.Context())
	if err != nil {
		return h.mapError(err, "")
	}

	if expression := c.Query("filter"); expression != "" {
		filtered := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			ok, err := h.filter.Matches(expression, row)
			if err != nil {
				return BadRequestError(err.Error())
			}
			if ok {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	return c.JSON(fiber.Map{"data": rows, "meta": fiber.Map{"total": len(rows)}})
}

// Get handles GET /api/rows/:key. With ?try=1 a missing key is not an
// error: the response reports found=false instead of 404.
func (h *Handler) Get(c *fiber.Ctx) error {
	if err := requireOperation(c, metadata.OpGet); err != nil {
		return err
	}
	key := c.Params("key")

	if c.QueryBool("try") {
		row, found, err := h.client.TryGet(c.Context(), key)
		if err != nil {
			return h.mapError(err, key)
		}
		return c.JSON(fiber.Map{"data": row, "found": found})
	}

	row, err := h.client.Get(c.Context(), key)
	if err != nil {
		return h.mapError(err, key)
	}
	return c.JSON(fiber.Map{"data": row, "found": true})
}

// Insert handles POST /api/rows/:key.
func (h *Handler) Insert(c *fiber.Ctx) error {
	if err := requireOperation(c, metadata.OpInsert); err != nil {
		return err
	}
	key := c.Params("key")

	row, err := parseRow(c)
	if err != nil {
		return err
	}
	if err := h.client.Insert(c.Context(), key, row); err != nil {
		return h.mapError(err, key)
	}
	return c.Status(201).JSON(fiber.Map{"data": fiber.Map{"key": key}})
}

// Update handles PUT /api/rows/:key. With ?mode=upsert a missing key is
// created instead of rejected.
func (h *Handler) Update(c *fiber.Ctx) error {
	op := metadata.OpUpdate
	upsert := c.Query("mode") == "upsert"
	if upsert {
		op = metadata.OpUpsert
	}
	if err := requireOperation(c, op); err != nil {
		return err
	}
	key := c.Params("key")

	row, err := parseRow(c)
	if err != nil {
		return err
	}

	if upsert {
		err = h.client.Upsert(c.Context(), key, row)
	} else {
		err = h.client.Update(c.Context(), key, row)
	}
	if err != nil {
		return h.mapError(err, key)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"key": key}})
}

// Delete handles DELETE /api/rows/:key.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := requireOperation(c, metadata.OpDelete); err != nil {
		return err
	}
	key := c.Params("key")

	if err := h.client.Delete(c.Context(), key); err != nil {
		return h.mapError(err, key)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"key": key}})
}

func parseRow(c *fiber.Ctx) (map[string]any, error) {
	var row map[string]any
	if err := c.BodyParser(&row); err != nil {
		return nil, BadRequestError("Invalid JSON body")
	}
	return row, nil
}

// mapError translates table contract errors into API errors. Anything
// unmapped bubbles to the app error handler as a 500.
func (h *Handler) mapError(err error, key string) error {
	var schemaErr *metadata.SchemaError
	if errors.As(err, &schemaErr) {
		return SchemaViolationError(schemaErr.Error(), schemaErr.Fields)
	}
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundError(h.table, key)
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return AlreadyExistsError(h.table, key)
	}
	if errors.Is(err, store.ErrBackend) {
		return BackendError(fmt.Sprintf("%s: backend unavailable", h.table))
	}
	return err
}

// ErrorHandler is the fiber error handler mapping APIErrors to their status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(ErrorResponse{Error: apiErr})
	}
	return c.Status(500).JSON(ErrorResponse{
		Error: &APIError{Code: "INTERNAL_ERROR", Message: "Internal server error"},
	})
}
