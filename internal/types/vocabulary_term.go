package types

import (
	"time"

	"github.com/google/uuid"
)

// Vocabulary categories carried over from the extraction pipeline.
const (
	VocabCategoryForm       = "form_options"
	VocabCategoryRoute      = "route_options"
	VocabCategoryFrequency  = "frequency_options"
	VocabCategoryDosageUnit = "dosage_units"
)

// VocabularyTerm is one accepted value of a controlled vocabulary.
// Append-only; position preserves insertion order, which doubles as the
// display order. Duplicates within a category are tolerated.
type VocabularyTerm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Category  string    `gorm:"index;not null" json:"category"`
	Value     string    `gorm:"not null" json:"value"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (VocabularyTerm) TableName() string {
	return "vocabulary_terms"
}

func KnownVocabCategory(category string) bool {
	switch category {
	case VocabCategoryForm, VocabCategoryRoute, VocabCategoryFrequency, VocabCategoryDosageUnit:
		return true
	}
	return false
}
