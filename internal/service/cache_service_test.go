package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/costmatrix/analytics-engine/pkg/errors"
)

type fakeCacheRepository struct {
	values map[string][]byte
	setErr error
}

func newFakeCacheRepository() *fakeCacheRepository {
	return &fakeCacheRepository{values: make(map[string][]byte)}
}

func (f *fakeCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = raw
	return nil
}

func (f *fakeCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	for k := range f.values {
		delete(f.values, k)
	}
	return nil
}

func TestCacheServiceDisabledWhenNotEnabled(t *testing.T) {
	repo := newFakeCacheRepository()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	if svc.Enabled() {
		t.Fatal("expected caching to be disabled")
	}
	if err := svc.Set(context.Background(), "k", map[string]int{"a": 1}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var dest map[string]int
	hit, err := svc.Get(context.Background(), "k", &dest)
	if err != nil || hit {
		t.Fatalf("expected a miss with no error when disabled, got hit=%v err=%v", hit, err)
	}
}

func TestCacheServiceSetThenGetRoundtrips(t *testing.T) {
	repo := newFakeCacheRepository()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)

	if err := svc.Set(context.Background(), "summary:2024-03", map[string]int{"total": 42}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var dest map[string]int
	hit, err := svc.Get(context.Background(), "summary:2024-03", &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hit {
		t.Fatal("expected a cache hit")
	}
	if dest["total"] != 42 {
		t.Fatalf("unexpected value: %v", dest)
	}
}

func TestCacheServiceGetMissReturnsNoError(t *testing.T) {
	repo := newFakeCacheRepository()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)

	var dest map[string]int
	hit, err := svc.Get(context.Background(), "missing", &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatal("expected a miss")
	}
}

func TestCacheServiceInvalidateClearsEntries(t *testing.T) {
	repo := newFakeCacheRepository()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	_ = svc.Set(context.Background(), "aggregate:2024-03", 1, 0)
	_ = svc.Set(context.Background(), "aggregate:2024-04", 1, 0)

	if err := svc.Invalidate(context.Background(), "aggregate:*"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var dest int
	hit, _ := svc.Get(context.Background(), "aggregate:2024-03", &dest)
	if hit {
		t.Fatal("expected entries to be cleared after invalidate")
	}
}

func TestNilCacheServiceEnabledIsFalse(t *testing.T) {
	var svc *CacheService
	if svc.Enabled() {
		t.Fatal("a nil *CacheService must report disabled")
	}
}
