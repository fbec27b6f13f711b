// Package persistence provides database storage implementations.
package persistence

import (
	"time"

	"github.com/helixml/taxseq/internal/database"
)

// RunModel represents a pipeline run in the database.
type RunModel struct {
	ID               string     `gorm:"column:id;primaryKey;size:36"`
	TaxID            int64      `gorm:"column:taxid;index;not null"`
	Organism         string     `gorm:"column:organism"`
	MinLength        int        `gorm:"column:min_length;not null"`
	MaxLength        int        `gorm:"column:max_length;not null"`
	BatchSize        int        `gorm:"column:batch_size;not null"`
	State            string     `gorm:"column:state;size:32;index;not null"`
	ResultCount      int        `gorm:"column:result_count"`
	RecordCount      int        `gorm:"column:record_count"`
	BatchesPlanned   int        `gorm:"column:batches_planned"`
	BatchesFetched   int        `gorm:"column:batches_fetched"`
	MalformedRecords int        `gorm:"column:malformed_records"`
	ErrorMessage     string     `gorm:"column:error_message;type:text"`
	StartedAt        time.Time  `gorm:"column:started_at;index"`
	FinishedAt       *time.Time `gorm:"column:finished_at"`

	Skipped []SkippedBatchModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	Records []RecordModel       `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name.
func (RunModel) TableName() string { return "runs" }

// RecordModel represents a filtered record of a run.
type RecordModel struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunID       string `gorm:"column:run_id;size:36;index:idx_run_records_position,priority:1;not null"`
	Position    int    `gorm:"column:position;index:idx_run_records_position,priority:2;not null"`
	Accession   string `gorm:"column:accession;index;not null"`
	Length      int    `gorm:"column:length;not null"`
	Description string `gorm:"column:description;type:text"`
}

// TableName returns the table name.
func (RecordModel) TableName() string { return "run_records" }

// SkippedBatchModel represents a batch skipped during a run.
type SkippedBatchModel struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunID       string `gorm:"column:run_id;size:36;index;not null"`
	BatchOffset int    `gorm:"column:batch_offset;not null"`
	BatchSize   int    `gorm:"column:batch_size;not null"`
	Cause       string `gorm:"column:cause;type:text"`
}

// TableName returns the table name.
func (SkippedBatchModel) TableName() string { return "run_skipped_batches" }

// AutoMigrate creates or updates the schema.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(
		&RunModel{},
		&RecordModel{},
		&SkippedBatchModel{},
	)
}
