package types

import (
	"time"

	"github.com/google/uuid"
)

// Correction is the operator-finalized structured record, persisted
// append-only. The original candidate rows are never overwritten, so a
// lost-claim conflict can leave more than one correction set per document;
// consumers take the set with the latest completed claim.
type Correction struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocID         int64     `gorm:"index;not null;column:doc_id" json:"doc_id"`
	OperatorID    string    `gorm:"index;not null;column:operator_id" json:"operator_id"`
	Name          string    `json:"name"`
	Form          string    `json:"form"`
	Dosage        string    `json:"dosage"`
	Concentration string    `json:"concentration"`
	Frequency     string    `json:"frequency"`
	Duration      string    `json:"duration"`
	Route         string    `json:"route"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Correction) TableName() string {
	return "corrections"
}
