package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/types"
)

type VocabularyRepo interface {
	// ListByCategory returns the accepted values of a category in insertion
	// order.
	ListByCategory(ctx context.Context, tx *gorm.DB, category string) ([]*types.VocabularyTerm, error)
	// Append adds a value to the end of a category. Uniqueness is not
	// enforced at this level; callers check first, and a lost race just
	// produces a redundant suggestion.
	Append(ctx context.Context, tx *gorm.DB, category, value string) (*types.VocabularyTerm, error)
}

type vocabularyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVocabularyRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyRepo {
	return &vocabularyRepo{
		db:  db,
		log: baseLog.With("repo", "VocabularyRepo"),
	}
}

func (r *vocabularyRepo) ListByCategory(ctx context.Context, tx *gorm.DB, category string) ([]*types.VocabularyTerm, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.VocabularyTerm

	if category == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("category = ?", category).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *vocabularyRepo) Append(ctx context.Context, tx *gorm.DB, category, value string) (*types.VocabularyTerm, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var term *types.VocabularyTerm
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var maxPosition int
		row := txx.Model(&types.VocabularyTerm{}).
			Where("category = ?", category).
			Select("COALESCE(MAX(position), 0)").
			Row()
		if err := row.Scan(&maxPosition); err != nil {
			return err
		}
		term = &types.VocabularyTerm{
			ID:        uuid.New(),
			Category:  category,
			Value:     value,
			Position:  maxPosition + 1,
			CreatedAt: time.Now(),
		}
		return txx.Create(term).Error
	})
	if err != nil {
		return nil, err
	}
	return term, nil
}
