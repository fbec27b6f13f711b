package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/internal/database"
)

const recordInsertBatch = 500

// RunStore implements run.Store using GORM.
type RunStore struct {
	db     database.Database
	mapper RunMapper
}

// NewRunStore creates a new RunStore.
func NewRunStore(db database.Database) RunStore {
	return RunStore{db: db}
}

// Save creates or replaces a run together with its records.
func (s RunStore) Save(ctx context.Context, result run.Result) error {
	model := s.mapper.ToModel(result)
	records := model.Records
	skipped := model.Skipped
	model.Records = nil
	model.Skipped = nil

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", model.ID).Delete(&RecordModel{}).Error; err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		if err := tx.Where("run_id = ?", model.ID).Delete(&SkippedBatchModel{}).Error; err != nil {
			return fmt.Errorf("clear skipped batches: %w", err)
		}
		if err := tx.Omit(clause.Associations).Save(&model).Error; err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(&records, recordInsertBatch).Error; err != nil {
				return fmt.Errorf("save records: %w", err)
			}
		}
		if len(skipped) > 0 {
			if err := tx.Create(&skipped).Error; err != nil {
				return fmt.Errorf("save skipped batches: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", result.ID(), err)
	}
	return nil
}

// Get returns a run with its records in fetch order.
func (s RunStore) Get(ctx context.Context, id string) (run.Result, error) {
	var model RunModel
	err := s.db.Session(ctx).
		Preload("Skipped", func(db *gorm.DB) *gorm.DB { return db.Order("batch_offset ASC") }).
		Preload("Records", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return run.Result{}, fmt.Errorf("%w: %s", run.ErrNotFound, id)
		}
		return run.Result{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return s.mapper.ToDomain(model)
}

// List returns runs, most recent first, without records.
func (s RunStore) List(ctx context.Context, limit int) ([]run.Result, error) {
	db := s.db.Session(ctx).
		Preload("Skipped", func(db *gorm.DB) *gorm.DB { return db.Order("batch_offset ASC") }).
		Order("started_at DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	var models []RunModel
	if err := db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	results := make([]run.Result, 0, len(models))
	for _, m := range models {
		r, err := s.mapper.ToDomain(m)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
