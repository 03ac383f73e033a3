package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jortega/erp-core/internal/application/dto"
	"github.com/jortega/erp-core/internal/application/orders"
	"github.com/jortega/erp-core/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP de órdenes (protegido).
type OrderHandler struct {
	orders *orders.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{orders: uc}
}

// Create crea una orden y descuenta el stock de cada línea en una sola transacción.
// POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.orders.Create(c.Context(), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// Get devuelve una orden con sus líneas.
// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// List devuelve órdenes paginadas, más recientes primero.
// GET /api/orders?limit=&offset=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.orders.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toOrderListResponse(list, page))
}

// ListByCustomer devuelve las órdenes de un cliente.
// GET /api/orders/customer/:customerId?limit=&offset=
func (h *OrderHandler) ListByCustomer(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.orders.ListByCustomer(c.Context(), c.Params("customerId"), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toOrderListResponse(list, page))
}

// UpdateStatus avanza la orden en su máquina de estados (Pending→Shipped→Delivered).
// PUT /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.orders.UpdateStatus(c.Context(), c.Params("id"), in.Status); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "estado actualizado"})
}

// Cancel cancela la orden y repone el stock de sus líneas. Cancelar una orden
// ya cancelada responde 200 sin efecto.
// DELETE /api/orders/:id
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	changed, err := h.orders.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if !changed {
		return c.JSON(fiber.Map{"message": "la orden ya estaba cancelada"})
	}
	return c.JSON(fiber.Map{"message": "orden cancelada y stock repuesto"})
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		lines = append(lines, dto.OrderLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
		})
	}
	return dto.OrderResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		OrderDate:   o.OrderDate,
		TotalAmount: o.TotalAmount,
		Lines:       lines,
	}
}

func toOrderListResponse(list []*entity.Order, page dto.PageRequest) dto.OrderListResponse {
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toOrderResponse(o))
	}
	return dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
}
