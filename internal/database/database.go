package database

import (
	"fmt"
	"time"

	"vaultbook/internal/logger"
	"vaultbook/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of GORM models the schema consists of.
var allModels = []interface{}{
	&models.User{},
	&models.Vault{},
	&models.Category{},
	&models.Unit{},
	&models.Transaction{},
	&models.Loan{},
}

// Manager handles database connections and schema migration.
type Manager struct {
	db  *gorm.DB
	cfg *Config
}

// NewManager opens a database connection for the configured driver.
func NewManager(cfg *Config) (*Manager, error) {
	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{})
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN()}), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &Manager{db: db, cfg: cfg}, nil
}

// Migrate brings the schema up to date. Running it against an up-to-date
// database is a no-op for both drivers.
//
// The SQLite path uses GORM auto-migration; the PostgreSQL path applies the
// SQL files from migrations/ so production schemas stay reviewable.
func (m *Manager) Migrate() error {
	log := logger.Get()
	log.Info("Running database migrations...")

	if m.cfg.Driver == "sqlite" {
		if err := m.db.AutoMigrate(allModels...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Info("Database migrations completed successfully")
		return nil
	}

	mig, err := migrate.New("file://migrations", m.cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			log.Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			log.Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance.
func (m *Manager) DB() *gorm.DB {
	return m.db
}
