package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
	"github.com/nandakumarbm26/Products-RestAPI/internal/database/testutil"
	"github.com/nandakumarbm26/Products-RestAPI/internal/models"
)

// spyRepository counts storage calls made through the catalog.
type spyRepository struct {
	ProductRepository

	mu    sync.Mutex
	calls map[string]int
}

func newSpyRepository(t *testing.T) (*spyRepository, *ProductService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewProductService(db)
	require.NoError(t, err)
	return &spyRepository{ProductRepository: svc, calls: map[string]int{}}, svc
}

func (r *spyRepository) record(op string) {
	r.mu.Lock()
	r.calls[op]++
	r.mu.Unlock()
}

func (r *spyRepository) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *spyRepository) List(ctx context.Context, page, perPage int) (*ProductPage, error) {
	r.record("list")
	return r.ProductRepository.List(ctx, page, perPage)
}

func (r *spyRepository) Get(ctx context.Context, id uint64) (*models.Product, error) {
	r.record("get")
	return r.ProductRepository.Get(ctx, id)
}

func (r *spyRepository) Filter(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	r.record("filter")
	return r.ProductRepository.Filter(ctx, filter)
}

// pausingRepository holds the first Get until release is closed. With beforeLoad the pause
// happens ahead of the storage read and ends early when ctx is done; otherwise the row is read
// first and returned once released.
type pausingRepository struct {
	ProductRepository

	beforeLoad bool
	paused     chan struct{}
	release    chan struct{}
	once       sync.Once
	loads      atomic.Int32
}

func newPausingRepository(repo ProductRepository, beforeLoad bool) *pausingRepository {
	return &pausingRepository{
		ProductRepository: repo,
		beforeLoad:        beforeLoad,
		paused:            make(chan struct{}),
		release:           make(chan struct{}),
	}
}

func (r *pausingRepository) Get(ctx context.Context, id uint64) (*models.Product, error) {
	r.loads.Add(1)
	first := false
	r.once.Do(func() { first = true })
	if !first {
		return r.ProductRepository.Get(ctx, id)
	}

	if r.beforeLoad {
		close(r.paused)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-r.release:
		}
		return r.ProductRepository.Get(ctx, id)
	}

	product, err := r.ProductRepository.Get(ctx, id)
	close(r.paused)
	<-r.release
	return product, err
}

// spyStore wraps a memory store, counts mutations and can inject failures.
type spyStore struct {
	*cache.MemoryStore

	mu          sync.Mutex
	sets        int
	deletes     int
	getErr      error
	setErr      error
	deleteErr   error
	blockGet    bool
	unreachable bool
	lastDeleted []string
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: cache.NewMemoryStore()}
}

func (s *spyStore) Reachable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unreachable
}

func (s *spyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	err, block := s.getErr, s.blockGet
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, false, ctx.Err()
	}
	if err != nil {
		return nil, false, err
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *spyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.sets++
	err := s.setErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

func (s *spyStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	s.deletes++
	s.lastDeleted = append([]string(nil), keys...)
	err := s.deleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, keys...)
}

func (s *spyStore) mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets + s.deletes
}

func int64Ptr(v int64) *int64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
