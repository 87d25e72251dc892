package repository

import (
	"context"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for product master data.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)

	// Used inside transactions — callers must pass the tx instance
	SetActiveTx(tx *gorm.DB, id uuid.UUID, active bool) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("sku = ? AND active = true", sku).
		First(&p).Error
	return &p, err
}

func (r *productRepo) SetActiveTx(tx *gorm.DB, id uuid.UUID, active bool) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("active", active).Error
}
