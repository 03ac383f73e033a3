package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jortega/erp-core/internal/application/auth"
	"github.com/jortega/erp-core/internal/application/inventory"
	"github.com/jortega/erp-core/internal/application/orders"
	"github.com/jortega/erp-core/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	CustomerUC  *usecase.CustomerUseCase
	WarehouseUC *usecase.WarehouseUseCase
	LedgerUC    *inventory.LedgerUseCase
	OrdersUC    *orders.UseCase
	AuthUC      *auth.AuthUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Customers (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	// Warehouses (protegido)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", warehouseHandler.Delete)

	// Inventory ledger (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	invGroup.Post("/receive/:productId/:warehouseId", inventoryHandler.Receive)
	invGroup.Post("/issue/:productId/:warehouseId", inventoryHandler.Issue)
	invGroup.Post("/transfer/:productId", inventoryHandler.Transfer)
	invGroup.Post("/adjust/:productId/:warehouseId", inventoryHandler.Adjust)
	invGroup.Put("/minimum/:productId/:warehouseId", inventoryHandler.SetMinimum)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)
	invGroup.Get("/product/:productId", inventoryHandler.StockByProduct)
	invGroup.Get("/warehouse/:warehouseId", inventoryHandler.StockByWarehouse)
	invGroup.Get("/transactions/:productId", inventoryHandler.History)

	// Orders (protegido)
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrdersUC)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/customer/:customerId", orderHandler.ListByCustomer)
	ordersGroup.Get("/:id", orderHandler.Get)
	ordersGroup.Put("/:id/status", orderHandler.UpdateStatus)
	ordersGroup.Delete("/:id", orderHandler.Cancel)
}
