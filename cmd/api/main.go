package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Farmapos-api/internal/application/analytics"
	"github.com/jhoicas/Farmapos-api/internal/application/auth"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/application/pharmacy"
	"github.com/jhoicas/Farmapos-api/internal/application/sales"
	"github.com/jhoicas/Farmapos-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/Farmapos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Farmapos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Farmapos-api/internal/infrastructure/qz"
	"github.com/jhoicas/Farmapos-api/internal/infrastructure/regulatory"
	httpRouter "github.com/jhoicas/Farmapos-api/internal/interfaces/http"
	"github.com/jhoicas/Farmapos-api/pkg/config"
	"github.com/jhoicas/Farmapos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	storeRepo := postgres.NewStoreRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	medicineRepo := postgres.NewMedicineRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	medMovementRepo := postgres.NewMedicineStockMovementRepository(pool)
	registerRepo := postgres.NewControlledRegisterRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	pharmacySaleRepo := postgres.NewPharmacySaleRepository(pool)
	receivingRepo := postgres.NewReceivingRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Inventario: el libro de movimientos es la única vía de mutación de stock
	stockLedger := inventory.NewStockLedgerUseCase(txRunner, productRepo, movementRepo)
	lowStock := inventory.NewLowStockUseCase(productRepo)
	batchLedger := inventory.NewBatchLedgerUseCase(txRunner, batchRepo, medicineRepo, medMovementRepo)
	batchAdmin := inventory.NewBatchAdminUseCase(txRunner, batchLedger, batchRepo, medicineRepo)
	receivingUC := inventory.NewReceivingUseCase(
		txRunner, batchLedger, storeRepo, supplierRepo, medicineRepo, receivingRepo,
	)
	purchaseUC := inventory.NewPurchaseOrderUseCase(
		txRunner, stockLedger, storeRepo, supplierRepo, productRepo, orderRepo,
	)

	// Ventas retail
	createSale := sales.NewCreateSaleUseCase(txRunner, stockLedger, storeRepo, productRepo)
	saleQueries := sales.NewSaleQueryUseCase(saleRepo)
	voidSale := sales.NewVoidSaleUseCase(txRunner, stockLedger, saleRepo)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	salePDF := sales.NewPDFUseCase(saleRepo, storeRepo, pdfGenerator)

	// Farmacia: dispensa FEFO + registro de controlados
	dispense := pharmacy.NewDispenseUseCase(txRunner, batchLedger, storeRepo, medicineRepo, batchRepo)
	pharmacyQueries := pharmacy.NewSaleQueryUseCase(pharmacySaleRepo)
	voidDispense := pharmacy.NewVoidDispenseUseCase(txRunner, batchLedger, pharmacySaleRepo, medicineRepo)
	registerQueries := pharmacy.NewRegisterQueryUseCase(registerRepo, medicineRepo)

	// El certificado de la tienda sirve para dos cosas: firmar los retos de
	// QZ Tray y firmar la exportación XML del registro de controlados.
	qzSigner, err := qz.NewChallengeSigner(cfg.QZ.CertPath, cfg.QZ.KeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar certificado de la tienda")
	}
	if !qzSigner.Enabled() {
		log.Warn().Msg("certificado de la tienda no configurado: firma QZ deshabilitada y la exportación del registro saldrá sin firmar")
	}
	exporter := regulatory.NewXMLExporter(qzSigner.Certificate())
	regulatoryExport := pharmacy.NewRegulatoryExportUseCase(registerRepo, medicineRepo, batchRepo, exporter)

	// Catálogo, reportes e importación
	storeUC := usecase.NewStoreUseCase(storeRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	medicineUC := usecase.NewMedicineUseCase(medicineRepo, batchRepo, categoryRepo, supplierRepo)
	reportUC := usecase.NewReportUseCase(reportRepo, batchRepo, medicineRepo)
	dashboardUC := analytics.NewDashboardUseCase(reportRepo, batchRepo, lowStock)
	importUC := usecase.NewImportUseCase(productRepo, medicineRepo)

	authUC := auth.NewAuthUseCase(userRepo, storeRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FarmaPOS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		StoreUC:    storeUC,
		UserUC:     userUC,
		CategoryUC: categoryUC,
		SupplierUC: supplierUC,
		ProductUC:  productUC,
		MedicineUC: medicineUC,

		StockLedger: stockLedger,
		LowStock:    lowStock,
		BatchAdmin:  batchAdmin,
		BatchLedger: batchLedger,
		ReceivingUC: receivingUC,
		PurchaseUC:  purchaseUC,

		CreateSale:  createSale,
		SaleQueries: saleQueries,
		VoidSale:    voidSale,
		SalePDF:     salePDF,

		Dispense:         dispense,
		PharmacyQueries:  pharmacyQueries,
		VoidDispense:     voidDispense,
		RegisterQueries:  registerQueries,
		RegulatoryExport: regulatoryExport,

		ReportUC:    reportUC,
		DashboardUC: dashboardUC,
		ImportUC:    importUC,
		QZSigner:    qzSigner,

		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
