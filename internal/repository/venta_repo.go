package repository

import (
	"context"

	"github.com/ratolibre1/fungus-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// CountActivasByCliente counts non-deleted ventas referencing a customer
	// record — consulted by the customer-role demote guard.
	CountActivasByCliente(ctx context.Context, clienteID uuid.UUID) (int64, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) CountActivasByCliente(ctx context.Context, clienteID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("cliente_id = ? AND eliminada = false", clienteID).
		Count(&n).Error
	return n, err
}
