package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/types"
)

var errClaimRaced = errors.New("claim raced")

type ClaimRepo interface {
	// ExpireStale deletes every in_process claim older than the threshold,
	// returning the affected documents to the unclaimed pool. Returns the
	// number of claims released.
	ExpireStale(ctx context.Context, tx *gorm.DB, threshold time.Duration) (int64, error)
	// ClaimNextUnclaimed atomically picks one document with no claim row at
	// all and inserts an in_process claim for it. Returns nil when the pool
	// is empty. Two concurrent callers never receive the same document.
	ClaimNextUnclaimed(ctx context.Context, tx *gorm.DB, operatorID string) (*types.Claim, error)
	// CompleteClaim transitions the operator's in_process claim for docID to
	// completed. Returns the number of rows affected; zero means the operator
	// no longer holds the claim (it expired, and possibly was reassigned) and
	// the caller must report a conflict.
	CompleteClaim(ctx context.Context, tx *gorm.DB, docID int64, operatorID string, completedAt time.Time) (int64, error)
	GetByDocIDs(ctx context.Context, tx *gorm.DB, docIDs []int64) ([]*types.Claim, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status string) (int64, error)
}

type claimRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClaimRepo(db *gorm.DB, baseLog *logger.Logger) ClaimRepo {
	return &claimRepo{
		db:  db,
		log: baseLog.With("repo", "ClaimRepo"),
	}
}

func (r *claimRepo) ExpireStale(ctx context.Context, tx *gorm.DB, threshold time.Duration) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	cutoff := time.Now().Add(-threshold)
	res := transaction.WithContext(ctx).
		Where("status = ? AND claimed_at < ?", types.ClaimStatusInProcess, cutoff).
		Delete(&types.Claim{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Info("Released stale claims", "count", res.RowsAffected, "cutoff", cutoff)
	}
	return res.RowsAffected, nil
}

func (r *claimRepo) ClaimNextUnclaimed(ctx context.Context, tx *gorm.DB, operatorID string) (*types.Claim, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Every lost race means another session just claimed a document, so the
	// unclaimed pool strictly shrinks and the loop terminates: either with a
	// claim or with a genuinely empty pool.
	for {
		var claimed *types.Claim
		err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
			var doc types.Document
			q := txx.Model(&types.Document{}).
				Where("NOT EXISTS (SELECT 1 FROM claims WHERE claims.doc_id = documents.id)").
				Order("documents.id ASC")
			if txx.Dialector.Name() == "postgres" {
				q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
			}
			qErr := q.First(&doc).Error
			if errors.Is(qErr, gorm.ErrRecordNotFound) {
				return nil
			}
			if qErr != nil {
				return qErr
			}

			claim := &types.Claim{
				ID:         uuid.New(),
				DocID:      doc.ID,
				OperatorID: operatorID,
				Status:     types.ClaimStatusInProcess,
				ClaimedAt:  time.Now(),
			}
			// The unique index on doc_id is the serialization point: if a
			// concurrent session claimed the same document between our select
			// and insert, the conflict clause swallows the insert and we pick
			// another document.
			res := txx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "doc_id"}},
				DoNothing: true,
			}).Create(claim)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errClaimRaced
			}
			claimed = claim
			return nil
		})
		if errors.Is(err, errClaimRaced) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return claimed, nil
	}
}

func (r *claimRepo) CompleteClaim(ctx context.Context, tx *gorm.DB, docID int64, operatorID string, completedAt time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// The operator_id predicate keeps a session whose claim expired and was
	// reassigned from completing the new owner's claim.
	res := transaction.WithContext(ctx).
		Model(&types.Claim{}).
		Where("doc_id = ? AND operator_id = ? AND status = ?", docID, operatorID, types.ClaimStatusInProcess).
		Updates(map[string]interface{}{
			"status":       types.ClaimStatusCompleted,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *claimRepo) GetByDocIDs(ctx context.Context, tx *gorm.DB, docIDs []int64) ([]*types.Claim, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Claim

	if len(docIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("doc_id IN ?", docIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *claimRepo) CountByStatus(ctx context.Context, tx *gorm.DB, status string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Claim{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
