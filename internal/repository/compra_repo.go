package repository

import (
	"context"

	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompraRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, tx *gorm.DB, c *model.Compra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error)
	// NextCorrelativo reserves the next document number inside the create
	// transaction so concurrent submits can never collide.
	NextCorrelativo(ctx context.Context, tx *gorm.DB) (int64, error)
	UpdateTx(tx *gorm.DB, c *model.Compra) error
	ReplaceItemsTx(tx *gorm.DB, compraID uuid.UUID, items []model.CompraItem) error
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// CountActivasByProveedor counts non-deleted compras referencing a
	// supplier record — the history the demote guard must not orphan.
	CountActivasByProveedor(ctx context.Context, proveedorID uuid.UUID) (int64, error)
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Compra) error {
	if tx == nil {
		tx = r.db.WithContext(ctx)
	}
	return tx.Create(c).Error
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Insumo").
		Preload("Proveedor").
		Where("eliminada = false").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *compraRepo) List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Compra{}).Where("eliminada = false")
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var compras []model.Compra
	err := q.Preload("Items").Preload("Proveedor").
		Order("correlativo DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&compras).Error
	return compras, total, err
}

func (r *compraRepo) NextCorrelativo(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		tx = r.db.WithContext(ctx)
	}
	var n int64
	err := tx.Raw("SELECT nextval('compras_correlativo_seq')").Scan(&n).Error
	return n, err
}

func (r *compraRepo) UpdateTx(tx *gorm.DB, c *model.Compra) error {
	return tx.Omit("Items", "Proveedor").Save(c).Error
}

func (r *compraRepo) ReplaceItemsTx(tx *gorm.DB, compraID uuid.UUID, items []model.CompraItem) error {
	if err := tx.Where("compra_id = ?", compraID).Delete(&model.CompraItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].CompraID = compraID
	}
	return tx.Create(&items).Error
}

func (r *compraRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Compra{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *compraRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Compra{}).Where("id = ?", id).Update("eliminada", true).Error
}

func (r *compraRepo) CountActivasByProveedor(ctx context.Context, proveedorID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Compra{}).
		Where("proveedor_id = ? AND eliminada = false", proveedorID).
		Count(&n).Error
	return n, err
}
