package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/types"
)

type CorrectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, corrections []*types.Correction) ([]*types.Correction, error)
	GetByDocIDs(ctx context.Context, tx *gorm.DB, docIDs []int64) ([]*types.Correction, error)
}

type correctionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCorrectionRepo(db *gorm.DB, baseLog *logger.Logger) CorrectionRepo {
	return &correctionRepo{
		db:  db,
		log: baseLog.With("repo", "CorrectionRepo"),
	}
}

func (r *correctionRepo) Create(ctx context.Context, tx *gorm.DB, corrections []*types.Correction) ([]*types.Correction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(corrections) == 0 {
		return []*types.Correction{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&corrections).Error; err != nil {
		return nil, err
	}

	return corrections, nil
}

func (r *correctionRepo) GetByDocIDs(ctx context.Context, tx *gorm.DB, docIDs []int64) ([]*types.Correction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Correction

	if len(docIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("doc_id IN ?", docIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
