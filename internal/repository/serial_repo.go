package repository

import (
	"context"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SerialRepository manages individually identified units of serial-tracked
// products. Status flips happen only inside movement transactions.
type SerialRepository interface {
	InsertBatchTx(tx *gorm.DB, units []model.SerialUnit) error
	// FindByNumbersTx loads and row-locks the named serials for (branch, product).
	FindByNumbersTx(tx *gorm.DB, branchID, productID uuid.UUID, serials []string) ([]model.SerialUnit, error)
	UpdateStatusTx(tx *gorm.DB, ids []uuid.UUID, status string) error
	CountAvailableTx(tx *gorm.DB, branchID, productID uuid.UUID) (int, error)
	ExistingNumbersTx(tx *gorm.DB, branchID, productID uuid.UUID, serials []string) ([]string, error)

	CountAvailable(ctx context.Context, branchID, productID uuid.UUID) (int, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type serialRepo struct{ db *gorm.DB }

func NewSerialRepository(db *gorm.DB) SerialRepository { return &serialRepo{db: db} }

func (r *serialRepo) DB() *gorm.DB { return r.db }

func (r *serialRepo) InsertBatchTx(tx *gorm.DB, units []model.SerialUnit) error {
	return tx.Create(&units).Error
}

func (r *serialRepo) FindByNumbersTx(tx *gorm.DB, branchID, productID uuid.UUID, serials []string) ([]model.SerialUnit, error) {
	var units []model.SerialUnit
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND product_id = ? AND serial_number IN ?", branchID, productID, serials).
		Find(&units).Error
	return units, err
}

func (r *serialRepo) UpdateStatusTx(tx *gorm.DB, ids []uuid.UUID, status string) error {
	return tx.Model(&model.SerialUnit{}).Where("id IN ?", ids).
		Update("status", status).Error
}

func (r *serialRepo) CountAvailableTx(tx *gorm.DB, branchID, productID uuid.UUID) (int, error) {
	var count int64
	err := tx.Model(&model.SerialUnit{}).
		Where("branch_id = ? AND product_id = ? AND status = ?", branchID, productID, model.SerialAvailable).
		Count(&count).Error
	return int(count), err
}

func (r *serialRepo) ExistingNumbersTx(tx *gorm.DB, branchID, productID uuid.UUID, serials []string) ([]string, error) {
	var existing []string
	err := tx.Model(&model.SerialUnit{}).
		Where("branch_id = ? AND product_id = ? AND serial_number IN ?", branchID, productID, serials).
		Pluck("serial_number", &existing).Error
	return existing, err
}

func (r *serialRepo) CountAvailable(ctx context.Context, branchID, productID uuid.UUID) (int, error) {
	return r.CountAvailableTx(r.db.WithContext(ctx), branchID, productID)
}
