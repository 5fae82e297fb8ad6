package types

import (
	"time"

	"gorm.io/datatypes"
)

// Document is the source corpus row. Rows are created by the upstream
// ingestion pipeline and are read-only to this service.
type Document struct {
	ID              int64          `gorm:"primaryKey" json:"id"`
	RawText         string         `gorm:"type:text;not null;column:raw_text" json:"raw_text"`
	ExtractedFields datatypes.JSON `gorm:"column:extracted_fields" json:"extracted_fields,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}
