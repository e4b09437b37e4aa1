package store

import "context"

type prefixed struct {
	kv     KV
	prefix string
}

// WithPrefix scopes every key of kv under prefix, e.g. one namespace per device.
func WithPrefix(kv KV, prefix string) KV {
	return prefixed{kv: kv, prefix: prefix}
}

func (p prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p prefixed) Put(ctx context.Context, key string, value []byte) error {
	return p.kv.Put(ctx, p.prefix+key, value)
}

func (p prefixed) Delete(ctx context.Context, key string) error {
	return p.kv.Delete(ctx, p.prefix+key)
}
