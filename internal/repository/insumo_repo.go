package repository

import (
	"context"

	"github.com/ratolibre1/fungus-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InsumoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Insumo, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Insumo, error)
	List(ctx context.Context) ([]model.Insumo, error)
	// AjustarStockTx applies a stock delta inside a transaction (recepcion
	// worker intake).
	AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
}

type insumoRepo struct{ db *gorm.DB }

func NewInsumoRepository(db *gorm.DB) InsumoRepository { return &insumoRepo{db: db} }

func (r *insumoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Insumo, error) {
	var i model.Insumo
	err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *insumoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Insumo, error) {
	var i model.Insumo
	err := tx.First(&i, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *insumoRepo) List(ctx context.Context) ([]model.Insumo, error) {
	var insumos []model.Insumo
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre").Find(&insumos).Error
	return insumos, err
}

func (r *insumoRepo) AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Insumo{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}
