package models

import (
	"time"
)

// Document is a single schemaless document of the key-document store.
// The payload is kept as jsonb so range queries can index into its fields.
type Document struct {
	Collection string `gorm:"primaryKey;type:varchar(64)"`
	DocID      string `gorm:"primaryKey;column:doc_id;type:varchar(160)"`
	Data       string `gorm:"type:jsonb"`
	UpdatedAt  time.Time
}
