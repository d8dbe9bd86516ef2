package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"citavista/backend/internal/store"
)

type kvEntry struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Key       string          `bun:"key,pk"`
	Value     json.RawMessage `bun:"value,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

// KeyValueRepo implements store.KeyValue on the kv_entries table.
type KeyValueRepo struct {
	db *bun.DB
}

func NewKeyValueRepo(db *bun.DB) *KeyValueRepo {
	return &KeyValueRepo{db: db}
}

func (r *KeyValueRepo) Get(ctx context.Context, key string) ([]byte, error) {
	return getEntry(ctx, r.db, key)
}

func (r *KeyValueRepo) Set(ctx context.Context, key string, value []byte) error {
	return upsertEntry(ctx, r.db, key, value)
}

func (r *KeyValueRepo) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockKey(ctx, tx, key); err != nil {
			return err
		}

		cur, err := getEntry(ctx, tx, key)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}
		return upsertEntry(ctx, tx, key, next)
	})
}

// lockKey serialises writers of one key until the transaction ends.
func lockKey(ctx context.Context, tx bun.Tx, key string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	return err
}

func getEntry(ctx context.Context, db bun.IDB, key string) ([]byte, error) {
	var e kvEntry
	err := db.NewSelect().
		Model(&e).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(e.Value), nil
}

func upsertEntry(ctx context.Context, db bun.IDB, key string, value []byte) error {
	e := kvEntry{
		Key:       key,
		Value:     json.RawMessage(value),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().
		Model(&e).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
