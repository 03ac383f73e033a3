package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jortega/erp-core/internal/application/dto"
	"github.com/jortega/erp-core/internal/application/usecase"
)

// CustomerHandler maneja las peticiones HTTP de clientes (protegido).
type CustomerHandler struct {
	customers *usecase.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *usecase.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{customers: uc}
}

// Create crea un cliente. El email debe ser único.
// POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.customers.Create(in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID obtiene un cliente.
// GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.customers.GetByID(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Update actualiza campos de un cliente.
// PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.customers.Update(c.Params("id"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// List lista clientes paginados.
// GET /api/customers?limit=&offset=
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	out, err := h.customers.List(page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Delete elimina un cliente.
// DELETE /api/customers/:id
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.customers.Delete(c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "cliente eliminado"})
}
