package types

// StructuredCandidate is the machine-extracted guess at the structured
// prescription fields for one drug mention. Read-only to this service;
// operator edits land in corrections, never here.
type StructuredCandidate struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	DocID         int64  `gorm:"index;not null;column:doc_id" json:"doc_id"`
	Name          string `json:"name"`
	Form          string `json:"form"`
	Dosage        string `json:"dosage"`
	Concentration string `json:"concentration"`
	Frequency     string `json:"frequency"`
	Duration      string `json:"duration"`
	Route         string `json:"route"`
}

func (StructuredCandidate) TableName() string {
	return "structured_candidates"
}
