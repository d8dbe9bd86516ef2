package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Keys persisted by the application.
const (
	KeyCreatedAppointments = "turnos"
	KeyScheduleConfig      = "configuracionHorario"
	KeyNotificationConfig  = "configuracionNotificaciones"
)

// KeyValue persists JSON documents under string keys.
type KeyValue interface {
	// Get returns ErrNotFound when key has never been set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Update runs fn with the current value (nil when missing) and stores what
	// it returns. No other Update or Set on the same key interleaves.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// GetJSON decodes the value under key into out. found is false when the key is missing.
func GetJSON(ctx context.Context, kv KeyValue, key string, out any) (found bool, err error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func SetJSON(ctx context.Context, kv KeyValue, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, raw)
}
