package cache

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"
)

// Loader fronts a Cache with per-key call deduplication.
type Loader struct {
	cache  Cache
	flight singleflight.Group
}

func NewLoader(c Cache) *Loader {
	return &Loader{cache: c}
}

func (l *Loader) Cache() Cache {
	return l.cache
}

// GetOrLoad returns the cached value for key, or runs load once across
// concurrent callers and caches its result. Errors are never cached.
func GetOrLoad[T any](ctx context.Context, l *Loader, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if load == nil {
		return zero, fmt.Errorf("loader is required")
	}
	if l == nil || l.cache == nil || key == "" {
		return load(ctx)
	}

	if raw, ok := l.cache.Get(ctx, key); ok {
		var cached T
		if err := sonic.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		l.cache.Delete(ctx, key)
	}

	value, err, _ := l.flight.Do(key, func() (any, error) {
		loaded, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if encoded, encErr := sonic.Marshal(loaded); encErr == nil {
			l.cache.Set(ctx, key, encoded)
		}
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}

	return value.(T), nil
}
