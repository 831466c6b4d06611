package repository

import (
	"context"

	"ripple/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository defines persistence operations for block edges.
type BlockRepository interface {
	// Insert creates the edge if absent. Returns true when a new edge was created.
	Insert(ctx context.Context, blockerID, blockedID uint) (bool, error)
	Remove(ctx context.Context, blockerID, blockedID uint) (bool, error)
	// ExistsBetween reports whether a block exists in either direction.
	ExistsBetween(ctx context.Context, userID1, userID2 uint) (bool, error)
	ListByBlocker(ctx context.Context, blockerID uint, limit, offset int) ([]models.Block, error)
	// WithTx binds the repository to an open transaction.
	WithTx(tx *gorm.DB) BlockRepository
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) WithTx(tx *gorm.DB) BlockRepository {
	return &blockRepository{db: tx}
}

func (r *blockRepository) Insert(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	block := models.Block{BlockerID: blockerID, BlockedID: blockedID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoNothing: true,
		}).
		Create(&block)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *blockRepository) Remove(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *blockRepository) ExistsBetween(ctx context.Context, userID1, userID2 uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userID1, userID2, userID2, userID1).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *blockRepository) ListByBlocker(ctx context.Context, blockerID uint, limit, offset int) ([]models.Block, error) {
	var blocks []models.Block
	if err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Preload("Blocked").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&blocks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return blocks, nil
}
