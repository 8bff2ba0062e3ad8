package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/codevar/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionEntryModel is a persisted cache entry.
type SessionEntryModel struct {
	Namespace string    `gorm:"column:namespace;primaryKey;size:255"`
	Key       string    `gorm:"column:entry_key;primaryKey;size:255"`
	Value     []byte    `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (SessionEntryModel) TableName() string { return "session_entries" }

// SessionStore persists cache entries keyed by namespace and key.
// It satisfies cache.Store.
type SessionStore struct {
	db database.Database
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(db database.Database) SessionStore {
	return SessionStore{db: db}
}

// Load returns the value stored under namespace and key.
func (s SessionStore) Load(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var model SessionEntryModel
	err := s.db.Session(ctx).
		Where("namespace = ? AND entry_key = ?", namespace, key).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session entry: %w", err)
	}
	return model.Value, true, nil
}

// Save creates or replaces the value stored under namespace and key.
func (s SessionStore) Save(ctx context.Context, namespace, key string, value []byte) error {
	now := time.Now()
	model := SessionEntryModel{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("save session entry: %w", result.Error)
	}
	return nil
}

// Purge deletes every entry in namespace.
func (s SessionStore) Purge(ctx context.Context, namespace string) error {
	result := s.db.Session(ctx).Where("namespace = ?", namespace).Delete(&SessionEntryModel{})
	if result.Error != nil {
		return fmt.Errorf("purge session entries: %w", result.Error)
	}
	return nil
}

// Count returns the number of entries in namespace.
func (s SessionStore) Count(ctx context.Context, namespace string) (int64, error) {
	var n int64
	err := s.db.Session(ctx).Model(&SessionEntryModel{}).Where("namespace = ?", namespace).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count session entries: %w", err)
	}
	return n, nil
}
