package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jortega/erp-core/internal/application/dto"
	"github.com/jortega/erp-core/internal/application/inventory"
	"github.com/jortega/erp-core/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del ledger de inventario (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// Receive registra una entrada de stock.
// POST /api/inventory/receive/:productId/:warehouseId
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.ledger.Receive(c.Context(), c.Params("productId"), c.Params("warehouseId"), in.Quantity, in.Reason)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockResponse(stock))
}

// Issue registra una salida de stock.
// POST /api/inventory/issue/:productId/:warehouseId
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.ledger.Issue(c.Context(), c.Params("productId"), c.Params("warehouseId"), in.Quantity, in.Reason)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockResponse(stock))
}

// Transfer traslada stock entre dos bodegas como una unidad atómica.
// POST /api/inventory/transfer/:productId
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.ledger.Transfer(c.Context(), c.Params("productId"), in.FromWarehouseID, in.ToWarehouseID, in.Quantity, in.Reason)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "traslado registrado"})
}

// Adjust fija la cantidad a un valor autoritativo.
// POST /api/inventory/adjust/:productId/:warehouseId
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.ledger.Adjust(c.Context(), c.Params("productId"), c.Params("warehouseId"), in.NewQuantity, in.Reason)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toStockResponse(stock))
}

// SetMinimum fija el umbral de stock mínimo del par.
// PUT /api/inventory/minimum/:productId/:warehouseId
func (h *InventoryHandler) SetMinimum(c *fiber.Ctx) error {
	var in dto.SetMinimumStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.ledger.SetMinimumStock(c.Context(), c.Params("productId"), c.Params("warehouseId"), in.MinimumStock); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "stock mínimo actualizado"})
}

// StockByProduct devuelve la existencia del producto en todas las bodegas.
// GET /api/inventory/product/:productId
func (h *InventoryHandler) StockByProduct(c *fiber.Ctx) error {
	list, err := h.ledger.StockByProduct(c.Context(), c.Params("productId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toStockResponses(list))
}

// StockByWarehouse devuelve la existencia de todos los productos de una bodega.
// GET /api/inventory/warehouse/:warehouseId
func (h *InventoryHandler) StockByWarehouse(c *fiber.Ctx) error {
	list, err := h.ledger.StockByWarehouse(c.Context(), c.Params("warehouseId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toStockResponses(list))
}

// LowStock devuelve los pares en o por debajo del stock mínimo.
// GET /api/inventory/low-stock
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.ledger.LowStock(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toStockResponses(list))
}

// History devuelve el log de movimientos de un producto, más recientes primero.
// GET /api/inventory/transactions/:productId?warehouse_id=&limit=&offset=
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	var warehouseID *string
	if w := c.Query("warehouse_id"); w != "" {
		warehouseID = &w
	}
	list, err := h.ledger.History(c.Context(), c.Params("productId"), warehouseID, page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.StockMovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			WarehouseID: m.WarehouseID,
			Kind:        m.Kind,
			Quantity:    m.Quantity,
			Reason:      m.Reason,
			CreatedAt:   m.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

func toStockResponse(s *entity.Stock) dto.StockResponse {
	return dto.StockResponse{
		ProductID:    s.ProductID,
		WarehouseID:  s.WarehouseID,
		Quantity:     s.Quantity,
		MinimumStock: s.MinimumStock,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toStockResponses(list []*entity.Stock) []dto.StockResponse {
	items := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toStockResponse(s))
	}
	return items
}
