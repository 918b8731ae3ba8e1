package infra

import (
	"fmt"

	"github.com/ratolibre1/fungus-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// over the domain models, then applies the bits of DDL that AutoMigrate
// cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Proveedor{},
		&model.Cliente{},
		&model.Insumo{},
		&model.Compra{},
		&model.CompraItem{},
		&model.Venta{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	// Correlativo sequence — reserved with nextval inside the create
	// transaction so concurrent submits never collide.
	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS compras_correlativo_seq START 1").Error; err != nil {
		return nil, fmt.Errorf("correlativo sequence: %w", err)
	}

	return db, nil
}
