package redis

import (
	"context"
	"errors"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"citavista/backend/internal/store"
)

const maxUpdateAttempts = 16

// KeyValue stores documents as plain Redis strings under prefix + ":" + key.
type KeyValue struct {
	rdb    *goredis.Client
	prefix string
}

func NewKeyValue(rdb *goredis.Client, prefix string) *KeyValue {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "citavista"
	}
	return &KeyValue{rdb: rdb, prefix: prefix}
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open connects and pings Redis.
func Open(ctx context.Context, opts Options) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (kv *KeyValue) key(k string) string {
	return kv.prefix + ":" + k
}

func (kv *KeyValue) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := kv.rdb.Get(ctx, kv.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (kv *KeyValue) Set(ctx context.Context, key string, value []byte) error {
	return kv.rdb.Set(ctx, kv.key(key), value, 0).Err()
}

// Update uses optimistic locking: the key is watched and the write is retried
// when another client changes it between read and write.
func (kv *KeyValue) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	k := kv.key(key)
	txf := func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, goredis.Nil) {
			cur = nil
		} else if err != nil {
			return err
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := kv.rdb.Watch(ctx, txf, k)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return store.ErrConflict
}

// ReadyCheck pings Redis.
func ReadyCheck(rdb *goredis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}
