package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"countdown/internal/model"
)

// StateRepository persists the timer and history collections as JSON
// documents in a key/value table.
type StateRepository struct {
	db     *gorm.DB
	logger *log.Logger
}

func NewStateRepository(db *gorm.DB, logger *log.Logger) *StateRepository {
	if logger == nil {
		logger = log.Default()
	}
	return &StateRepository{db: db, logger: logger}
}

func (r *StateRepository) SaveTimers(ctx context.Context, timers []model.Timer) error {
	if timers == nil {
		timers = []model.Timer{}
	}
	return r.put(ctx, model.KeyTimers, timers)
}

func (r *StateRepository) LoadTimers(ctx context.Context) []model.Timer {
	return decodeTimers(r.logger, r.get(ctx, model.KeyTimers))
}

func (r *StateRepository) SaveHistory(ctx context.Context, items []model.TimerHistoryItem) error {
	if items == nil {
		items = []model.TimerHistoryItem{}
	}
	return r.put(ctx, model.KeyHistory, items)
}

func (r *StateRepository) LoadHistory(ctx context.Context) []model.TimerHistoryItem {
	return decodeHistory(r.logger, r.get(ctx, model.KeyHistory))
}

// ClearAll removes both collections.
func (r *StateRepository) ClearAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Where("`key` IN ?", []string{model.KeyTimers, model.KeyHistory}).
		Delete(&model.StateEntry{}).Error
	if err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}

func (r *StateRepository) put(ctx context.Context, key string, v any) error {
	data, err := encodeJSON(key, v)
	if err != nil {
		return err
	}
	entry := model.StateEntry{Key: key, Value: string(data)}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (r *StateRepository) get(ctx context.Context, key string) []byte {
	var entry model.StateEntry
	err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&entry).Error
	switch {
	case err == nil:
		return []byte(entry.Value)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		r.logger.Printf("[error] load %s: %v", key, err)
		return nil
	}
}
