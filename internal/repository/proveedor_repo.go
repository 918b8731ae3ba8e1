package repository

import (
	"context"

	"github.com/ratolibre1/fungus-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error)
	// FindByRUT looks up by canonical RUT. Callers normalize first.
	FindByRUT(ctx context.Context, rutCanonico string) (*model.Proveedor, error)
	List(ctx context.Context) ([]model.Proveedor, error)
	// Search matches nombre (case-insensitive substring) or RUT prefix.
	Search(ctx context.Context, term string) ([]model.Proveedor, error)
	Update(ctx context.Context, p *model.Proveedor) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proveedorRepo) FindByRUT(ctx context.Context, rutCanonico string) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).First(&p, "rut = ?", rutCanonico).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proveedorRepo) List(ctx context.Context) ([]model.Proveedor, error) {
	var proveedores []model.Proveedor
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre").Find(&proveedores).Error
	return proveedores, err
}

func (r *proveedorRepo) Search(ctx context.Context, term string) ([]model.Proveedor, error) {
	var proveedores []model.Proveedor
	like := "%" + term + "%"
	err := r.db.WithContext(ctx).
		Where("activo = true").
		Where("nombre ILIKE ? OR rut LIKE ?", like, like).
		Order("nombre").
		Find(&proveedores).Error
	return proveedores, err
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *proveedorRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Proveedor{}).Where("id = ?", id).Update("activo", false).Error
}
