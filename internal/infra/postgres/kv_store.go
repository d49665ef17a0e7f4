package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

type kvEntry struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// KVStore is an app.KeyValueStore backed by the kv_entries table.
// Values must be valid JSON.
type KVStore struct {
	db    *bun.DB
	clock func() time.Time
}

func NewKVStore(db *bun.DB) *KVStore {
	return &KVStore{db: db, clock: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry kvEntry
	err := s.db.NewSelect().Model(&entry).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(entry.Value), true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	entry := &kvEntry{Key: key, Value: string(value), UpdatedAt: s.clock()}
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
