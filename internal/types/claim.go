package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ClaimStatusInProcess = "in_process"
	ClaimStatusCompleted = "completed"
)

// Claim asserts that one operator currently owns a document for annotation.
// The unique index on doc_id holds the core invariant: at most one claim row
// per document, whether in process or completed. Stale in_process rows are
// hard-deleted by the expiry sweep, which frees the index slot and returns
// the document to the pool. Completed is terminal.
type Claim struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DocID       int64      `gorm:"uniqueIndex;not null;column:doc_id" json:"doc_id"`
	OperatorID  string     `gorm:"index;not null;column:operator_id" json:"operator_id"`
	Status      string     `gorm:"index;not null" json:"status"`
	ClaimedAt   time.Time  `gorm:"not null;column:claimed_at" json:"claimed_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Claim) TableName() string {
	return "claims"
}
