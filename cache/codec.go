package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns values into the bytes a Store keeps and back.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// MsgpackCodec encodes values with msgpack, honouring `json` struct tags so
// domain types need a single set of tags.
type MsgpackCodec struct{}

// Marshal implements Codec.
func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal implements Codec.
func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// JSONCodec encodes values as JSON. Useful when other consumers read the
// same cache entries.
type JSONCodec struct{}

// Marshal implements Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// GetValue reads key from store and decodes it into T.
// A miss returns the zero value and false. Bytes that fail to decode are
// reported as ErrMalformedEntry, never as a miss.
func GetValue[T any](ctx context.Context, store Store, codec Codec, key string) (T, bool, error) {
	var zero T

	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}

	var value T
	if err := codec.Unmarshal(data, &value); err != nil {
		return zero, false, fmt.Errorf("%w: key %q: %w", ErrMalformedEntry, key, err)
	}
	return value, true, nil
}

// SetValue encodes value and stores it under key with ttl.
func SetValue[T any](ctx context.Context, store Store, codec Codec, key string, value T, ttl time.Duration) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %q: %w", key, err)
	}
	return store.Set(ctx, key, data, ttl)
}
