package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
)

// KV stores opaque payloads under <prefix>:patients:<id>. The schema
// version lives at <prefix>:schema_version.
type KV struct {
	client goredis.Cmdable
	prefix string
}

func NewKV(client goredis.Cmdable, prefix string) *KV {
	if prefix == "" {
		prefix = "fieldcare"
	}
	return &KV{client: client, prefix: prefix}
}

func (kv *KV) key(id string) string { return kv.prefix + ":patients:" + id }

func (kv *KV) versionKey() string { return kv.prefix + ":schema_version" }

// Open records the schema version, refusing to run against a newer one.
func (kv *KV) Open(ctx context.Context, version int) error {
	raw, err := kv.client.Get(ctx, kv.versionKey()).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		return kv.client.Set(ctx, kv.versionKey(), version, 0).Err()
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}

	current, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("parse schema version %q: %w", raw, err)
	}
	if current > version {
		return fmt.Errorf("schema version %d is newer than supported %d", current, version)
	}
	if current < version {
		return kv.client.Set(ctx, kv.versionKey(), version, 0).Err()
	}
	return nil
}

func (kv *KV) Get(ctx context.Context, id string) ([]byte, error) {
	b, err := kv.client.Get(ctx, kv.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (kv *KV) Put(ctx context.Context, id string, payload []byte) error {
	return kv.client.Set(ctx, kv.key(id), payload, 0).Err()
}

func (kv *KV) Delete(ctx context.Context, id string) error {
	return kv.client.Del(ctx, kv.key(id)).Err()
}
