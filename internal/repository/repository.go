package repository

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"gorm.io/gorm"
)

// Store is the GORM-backed implementation of store.Store.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Queue() store.QueueStore       { return &QueueRepository{db: s.db} }
func (s *Store) History() store.HistoryStore   { return &HistoryRepository{db: s.db} }
func (s *Store) Settings() store.SettingsStore { return &SettingsRepository{db: s.db} }

func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func inWindow(column string, tf store.Timeframe) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !tf.Start.IsZero() {
			db = db.Where(column+" >= ?", tf.Start)
		}
		if !tf.End.IsZero() {
			db = db.Where(column+" <= ?", tf.End)
		}
		return db
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
