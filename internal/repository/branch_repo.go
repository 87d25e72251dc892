package repository

import (
	"context"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BranchRepository resolves branches to their tenant and code. Branch CRUD
// lives outside this core; reads only.
type BranchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Branch, error)
}

type branchRepo struct{ db *gorm.DB }

func NewBranchRepository(db *gorm.DB) BranchRepository { return &branchRepo{db: db} }

func (r *branchRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Branch, error) {
	var b model.Branch
	err := r.db.WithContext(ctx).Where("active = true").First(&b, id).Error
	return &b, err
}
