package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/repos"
	"github.com/medlabel/medlabel-backend/internal/types"
)

type VocabularyService interface {
	List(ctx context.Context, category string) ([]string, error)
	// Add appends value to the category unless it is already present and
	// returns the updated list. Concurrent Add/List may race; the worst case
	// is a duplicate suggestion, which is harmless.
	Add(ctx context.Context, category, value string) ([]string, error)
	Contains(ctx context.Context, category, value string) (bool, error)
}

type vocabularyService struct {
	db        *gorm.DB
	log       *logger.Logger
	vocabRepo repos.VocabularyRepo
}

func NewVocabularyService(db *gorm.DB, baseLog *logger.Logger, vocabRepo repos.VocabularyRepo) VocabularyService {
	return &vocabularyService{
		db:        db,
		log:       baseLog.With("service", "VocabularyService"),
		vocabRepo: vocabRepo,
	}
}

func (s *vocabularyService) List(ctx context.Context, category string) ([]string, error) {
	if !types.KnownVocabCategory(category) {
		return nil, fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}
	terms, err := s.vocabRepo.ListByCategory(ctx, nil, category)
	if err != nil {
		s.log.Warn("List: load vocabulary failed", "error", err, "category", category)
		return nil, err
	}
	values := make([]string, 0, len(terms))
	for _, t := range terms {
		values = append(values, t.Value)
	}
	return values, nil
}

func (s *vocabularyService) Add(ctx context.Context, category, value string) ([]string, error) {
	if !types.KnownVocabCategory(category) {
		return nil, fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrMissingVocabValue
	}

	present, err := s.Contains(ctx, category, value)
	if err != nil {
		return nil, err
	}
	if !present {
		if _, err := s.vocabRepo.Append(ctx, nil, category, value); err != nil {
			s.log.Warn("Add: append vocabulary failed", "error", err, "category", category)
			return nil, err
		}
		s.log.Info("Vocabulary extended", "category", category, "value", value)
	}
	return s.List(ctx, category)
}

func (s *vocabularyService) Contains(ctx context.Context, category, value string) (bool, error) {
	terms, err := s.vocabRepo.ListByCategory(ctx, nil, category)
	if err != nil {
		return false, err
	}
	normalized := Normalize(value)
	for _, t := range terms {
		if t.Value == value || t.Value == normalized {
			return true, nil
		}
	}
	return false, nil
}

// Normalize reconciles title-case extractor output with sentence-case
// vocabulary entries: if the first rune is upper and the second is not,
// lower the first rune only. A heuristic, not a general case-normalizer;
// stored data is never rewritten with it.
func Normalize(value string) string {
	r := []rune(value)
	if len(r) > 1 && unicode.IsUpper(r[0]) && !unicode.IsUpper(r[1]) {
		r[0] = unicode.ToLower(r[0])
		return string(r)
	}
	return value
}
