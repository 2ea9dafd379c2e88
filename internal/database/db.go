package database

import (
	"fmt"
	"time"

	"recon-backend/internal/config"
	"recon-backend/internal/logger"
	"recon-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the ledger store selected by DATABASE_DRIVER.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	zl := logger.WithComponent("gorm")
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(&zl, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle alınamadı: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("veritabanı yanıt vermiyor: %w", err)
	}

	log := logger.WithComponent("database")
	log.Info().
		Str("driver", cfg.DatabaseDriver).
		Msg("Veritabanı bağlantısı başarılı")
	return db, nil
}

// Migrate creates the tables this service owns (users, audit_logs). The
// ledger tables belong to the bookkeeping application and are never migrated
// from here.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.AuditLog{}); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
