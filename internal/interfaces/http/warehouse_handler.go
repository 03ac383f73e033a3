package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jortega/erp-core/internal/application/dto"
	"github.com/jortega/erp-core/internal/application/usecase"
)

// WarehouseHandler maneja las peticiones HTTP de bodegas (protegido).
type WarehouseHandler struct {
	warehouses *usecase.WarehouseUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase) *WarehouseHandler {
	return &WarehouseHandler{warehouses: uc}
}

// Create crea una bodega. El nombre debe ser único.
// POST /api/warehouses
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.warehouses.Create(in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID obtiene una bodega.
// GET /api/warehouses/:id
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.warehouses.GetByID(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Update actualiza campos de una bodega.
// PUT /api/warehouses/:id
func (h *WarehouseHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.warehouses.Update(c.Params("id"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// List lista bodegas paginadas.
// GET /api/warehouses?limit=&offset=
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	out, err := h.warehouses.List(page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Delete elimina una bodega.
// DELETE /api/warehouses/:id
func (h *WarehouseHandler) Delete(c *fiber.Ctx) error {
	if err := h.warehouses.Delete(c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "bodega eliminada"})
}
