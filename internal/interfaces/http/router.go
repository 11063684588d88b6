package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/analytics"
	"github.com/jhoicas/Farmapos-api/internal/application/auth"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/application/pharmacy"
	"github.com/jhoicas/Farmapos-api/internal/application/sales"
	"github.com/jhoicas/Farmapos-api/internal/application/usecase"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/infrastructure/qz"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	StoreUC    *usecase.StoreUseCase
	UserUC     *usecase.UserUseCase
	CategoryUC *usecase.CategoryUseCase
	SupplierUC *usecase.SupplierUseCase
	ProductUC  *usecase.ProductUseCase
	MedicineUC *usecase.MedicineUseCase

	StockLedger *inventory.StockLedgerUseCase
	LowStock    *inventory.LowStockUseCase
	BatchAdmin  *inventory.BatchAdminUseCase
	BatchLedger *inventory.BatchLedgerUseCase
	ReceivingUC *inventory.ReceivingUseCase
	PurchaseUC  *inventory.PurchaseOrderUseCase

	CreateSale  *sales.CreateSaleUseCase
	SaleQueries *sales.SaleQueryUseCase
	VoidSale    *sales.VoidSaleUseCase
	SalePDF     *sales.PDFUseCase

	Dispense         *pharmacy.DispenseUseCase
	PharmacyQueries  *pharmacy.SaleQueryUseCase
	VoidDispense     *pharmacy.VoidDispenseUseCase
	RegisterQueries  *pharmacy.RegisterQueryUseCase
	RegulatoryExport *pharmacy.RegulatoryExportUseCase

	ReportUC    *usecase.ReportUseCase
	DashboardUC *analytics.DashboardUseCase
	ImportUC    *usecase.ImportUseCase
	QZSigner    *qz.ChallengeSigner

	JWTSecret string
}

// Router registra las rutas de la API.
//
// Tres niveles de acceso: rutas públicas (login, registro, firma QZ),
// rutas de personal autenticado (mostrador: ventas, dispensas, consultas
// de catálogo) y rutas restringidas por rol (inventario y reportes para
// manager+, tiendas y usuarios para admin).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// QZ Tray (público: el navegador lo consulta antes del login)
	qzHandler := NewQZHandler(deps.QZSigner)
	api.Get("/qz/certificate", qzHandler.Certificate)
	api.Get("/qz/sign", qzHandler.Sign)

	// Estado del setup inicial (público: el frontend decide si mostrar el asistente)
	storeHandler := NewStoreHandler(deps.StoreUC)
	api.Get("/setup/status", storeHandler.SetupStatus)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(entity.RoleAdmin, entity.RoleManager)
	admins := RequireRole(entity.RoleAdmin)

	protected.Put("/auth/password", authHandler.ChangePassword)

	// Stores: consultas para todo el personal, administración solo admin
	protected.Get("/stores/default", storeHandler.GetDefault)
	protected.Get("/stores/:id", storeHandler.GetByID)
	protected.Get("/stores", admins, storeHandler.List)
	protected.Post("/stores", admins, storeHandler.Create)
	protected.Put("/stores/:id", admins, storeHandler.Update)

	// Users (admin, salvo el perfil propio)
	userHandler := NewUserHandler(deps.UserUC)
	protected.Get("/users/me", userHandler.Me)
	protected.Get("/users", admins, userHandler.List)
	protected.Get("/users/:id", admins, userHandler.GetByID)
	protected.Put("/users/:id", admins, userHandler.Update)
	protected.Delete("/users/:id", admins, userHandler.Delete)

	// Categories
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	protected.Get("/categories", categoryHandler.List)
	protected.Get("/categories/:id", categoryHandler.GetByID)
	protected.Post("/categories", managers, categoryHandler.Create)
	protected.Put("/categories/:id", managers, categoryHandler.Update)
	protected.Delete("/categories/:id", managers, categoryHandler.Delete)

	// Suppliers
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	protected.Get("/suppliers", supplierHandler.List)
	protected.Get("/suppliers/:id", supplierHandler.GetByID)
	protected.Post("/suppliers", managers, supplierHandler.Create)
	protected.Put("/suppliers/:id", managers, supplierHandler.Update)
	protected.Delete("/suppliers/:id", managers, supplierHandler.Delete)

	// Products: lectura libre para el mostrador, mutaciones manager+
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.StockLedger, deps.LowStock)
	protected.Get("/products", productHandler.List)
	protected.Get("/products/:id", productHandler.GetByID)
	protected.Get("/products/:id/children", productHandler.ListChildren)
	protected.Get("/products/:id/movements", managers, inventoryHandler.ListMovements)
	protected.Post("/products", managers, productHandler.Create)
	protected.Put("/products/:id", managers, productHandler.Update)
	protected.Delete("/products/:id", managers, productHandler.Delete)

	// Inventory (manager+)
	protected.Post("/inventory/adjust", managers, inventoryHandler.AdjustStock)
	protected.Get("/inventory/low-stock", managers, inventoryHandler.LowStock)

	// Medicines: lectura libre, mutaciones manager+.
	// barcode va antes de :id para que fiber no lo capture como ID.
	medicineHandler := NewMedicineHandler(deps.MedicineUC)
	batchHandler := NewBatchHandler(deps.BatchAdmin, deps.BatchLedger)
	pharmacyHandler := NewPharmacyHandler(
		deps.Dispense, deps.PharmacyQueries, deps.VoidDispense,
		deps.RegisterQueries, deps.RegulatoryExport,
	)
	protected.Get("/medicines/barcode/:code", medicineHandler.GetByBarcode)
	protected.Get("/medicines", medicineHandler.List)
	protected.Get("/medicines/:id", medicineHandler.GetByID)
	protected.Get("/medicines/:id/batches", batchHandler.ListByMedicine)
	protected.Get("/medicines/:id/movements", managers, batchHandler.MedicineMovements)
	protected.Get("/medicines/:id/register", managers, pharmacyHandler.RegisterByMedicine)
	protected.Post("/medicines", managers, medicineHandler.Create)
	protected.Put("/medicines/:id", managers, medicineHandler.Update)
	protected.Delete("/medicines/:id", managers, medicineHandler.Delete)

	// Batches: consulta libre, operaciones manager+
	protected.Get("/batches/:id", batchHandler.GetByID)
	protected.Get("/batches/:id/movements", managers, batchHandler.BatchMovements)
	protected.Get("/batches/:id/register", managers, pharmacyHandler.RegisterByBatch)
	protected.Post("/batches/:id/adjust", managers, batchHandler.Adjust)
	protected.Post("/batches/:id/block", managers, batchHandler.Block)
	protected.Post("/batches/:id/unblock", managers, batchHandler.Unblock)
	protected.Post("/batches/:id/writeoff", managers, batchHandler.Writeoff)

	// Recepciones de stock (manager+)
	receivingHandler := NewReceivingHandler(deps.ReceivingUC)
	protected.Post("/receivings", managers, receivingHandler.Create)
	protected.Get("/receivings", managers, receivingHandler.List)
	protected.Get("/receivings/:id", managers, receivingHandler.GetByID)

	// Órdenes de compra (manager+)
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	protected.Post("/purchase-orders", managers, purchaseHandler.Create)
	protected.Get("/purchase-orders", managers, purchaseHandler.List)
	protected.Get("/purchase-orders/:id", managers, purchaseHandler.GetByID)
	protected.Post("/purchase-orders/:id/receive", managers, purchaseHandler.Receive)
	protected.Post("/purchase-orders/:id/cancel", managers, purchaseHandler.Cancel)

	// Ventas retail: crear y consultar para todo el personal, anular manager+
	saleHandler := NewSaleHandler(deps.CreateSale, deps.SaleQueries, deps.VoidSale, deps.SalePDF)
	protected.Post("/sales", saleHandler.Create)
	protected.Get("/sales", saleHandler.List)
	protected.Get("/sales/:id", saleHandler.GetByID)
	protected.Get("/sales/:id/pdf", saleHandler.DownloadPDF)
	protected.Post("/sales/:id/void", managers, saleHandler.Void)

	// Dispensas de farmacia: mismo esquema que retail
	protected.Post("/pharmacy-sales", pharmacyHandler.Dispense)
	protected.Get("/pharmacy-sales", pharmacyHandler.List)
	protected.Get("/pharmacy-sales/:id", pharmacyHandler.GetByID)
	protected.Post("/pharmacy-sales/:id/void", managers, pharmacyHandler.Void)

	// Exportación regulatoria del registro de controlados (manager+)
	protected.Get("/pharmacy/register/export", managers, pharmacyHandler.ExportRegister)

	// Reportes (manager+)
	reportHandler := NewReportHandler(deps.ReportUC)
	protected.Get("/reports/sales-summary", managers, reportHandler.SalesSummary)
	protected.Get("/reports/top-products", managers, reportHandler.TopProducts)
	protected.Get("/reports/top-medicines", managers, reportHandler.TopMedicines)
	protected.Get("/reports/payments", managers, reportHandler.PaymentBreakdown)
	protected.Get("/reports/expiring-batches", managers, reportHandler.ExpiringBatches)

	// Dashboard (todo el personal)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)

	// Importación de catálogo (manager+)
	importHandler := NewImportHandler(deps.ImportUC)
	protected.Post("/import/products", managers, importHandler.ImportProducts)
	protected.Post("/import/medicines", managers, importHandler.ImportMedicines)
}
