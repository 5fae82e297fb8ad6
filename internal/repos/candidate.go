package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/types"
)

type CandidateRepo interface {
	GetByDocIDs(ctx context.Context, tx *gorm.DB, docIDs []int64) ([]*types.StructuredCandidate, error)
}

type candidateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCandidateRepo(db *gorm.DB, baseLog *logger.Logger) CandidateRepo {
	return &candidateRepo{
		db:  db,
		log: baseLog.With("repo", "CandidateRepo"),
	}
}

func (r *candidateRepo) GetByDocIDs(ctx context.Context, tx *gorm.DB, docIDs []int64) ([]*types.StructuredCandidate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StructuredCandidate

	if len(docIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("doc_id IN ?", docIDs).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
