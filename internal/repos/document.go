package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/types"
)

type DocumentRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*types.Document, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{
		db:  db,
		log: baseLog.With("repo", "DocumentRepo"),
	}
}

func (r *documentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Document

	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *documentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Document{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
