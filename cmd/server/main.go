package main

import (
	"log"
	"strings"

	"recon-backend/internal/audit"
	"recon-backend/internal/auth"
	"recon-backend/internal/config"
	"recon-backend/internal/database"
	"recon-backend/internal/ledger"
	"recon-backend/internal/logger"
	"recon-backend/internal/models"
	"recon-backend/internal/reconcile"
	"recon-backend/internal/workbook"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	closer, err := logger.Setup(cfg.GetLoggerConfig())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closer.Close()
	zl := logger.WithComponent("server")

	db, err := database.Open(cfg)
	if err != nil {
		zl.Fatal().Err(err).Msg("Veritabanı açılamadı")
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		zl.Fatal().Err(err).Msg("Migration başarısız")
	}

	store := ledger.NewStore(db)
	rec := audit.NewRecorder(db)
	opts := cfg.RunOptions()
	run := reconcile.NewRun(store, workbook.NewWriter(opts.Font), opts)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			zl.Error().Err(err).Str("path", c.Path()).Msg("Unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	app.Use(recover.New())

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,OPTIONS",
		ExposeHeaders: "Content-Disposition, X-Run-Id, X-Total-Sheets, X-Export-Warnings",
	}))

	api := app.Group("/api")

	// Auth (açık)
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db, rec))
	api.Post("/auth/login", auth.LoginRateLimiter(cfg), auth.LoginHandler(cfg, db))
	api.Post("/auth/logout", auth.LogoutHandler())

	// Korumalı rotalar
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg, db))

	protected.Get("/auth/me", auth.MeHandler())

	// Partnerler
	protected.Get("/partners", reconcile.ListPartnersHandler(store))
	protected.Get("/partners/balances", reconcile.BalancesHandler(store))
	protected.Get("/partners/:code/summary", reconcile.PartnerSummaryHandler(store))

	// Dışa aktarma
	protected.Get("/export/status", reconcile.ExportStatusHandler())
	protected.Post("/export/receivable-payable",
		auth.RequireExport(cfg),
		reconcile.ExportReceivablePayableHandler(run, rec))

	// Kullanıcı yönetimi (sadece admin)
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Post("/users", auth.CreateUserHandler(db, rec))
	adminRoutes.Get("/users", auth.ListUsersHandler(db))
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(rec))

	zl.Info().Str("port", cfg.HTTPPort).Msg("Server starting")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		zl.Fatal().Err(err).Msg("Server stopped")
	}
}
