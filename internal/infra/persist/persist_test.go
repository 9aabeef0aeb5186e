package persist

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/cache"
	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartLine struct {
	ID    string
	Qty   int
	Price string
}

func cartLines(c []model.CartItem) []cartLine {
	out := make([]cartLine, 0, len(c))
	for _, it := range c {
		out = append(out, cartLine{ID: it.ID, Qty: it.Quantity, Price: it.Price.String()})
	}
	return out
}

func populatedStore() *store.Store {
	s := store.New()
	u := model.EmptyUser()
	u.ID = "u1"
	u.Username = "alice"
	s.SetUser(u)
	s.AddToCart(model.NewCartItem(model.Product{ID: "b", Name: "B", Price: decimal.RequireFromString("9.99")}, 1))
	s.AddToCart(model.NewCartItem(model.Product{ID: "a", Name: "A", Price: decimal.RequireFromString("120")}, 3))
	s.AddToCart(model.NewCartItem(model.Product{ID: "c", Name: "C", Price: decimal.RequireFromString("0.5")}, 1))
	s.AddToCart(model.NewCartItem(model.Product{ID: "b"}, 1))
	s.SetPage(3)
	s.SetLoading(true)
	return s
}

func backends(t *testing.T) map[string]Backend {
	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return map[string]Backend{
		"file":  fb,
		"redis": NewRedisBackend(cache.NewRedisCache(rdb, "storefront")),
	}
}

func TestPersistRehydrateRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			src := populatedStore()
			adapter := NewAdapter(backend, "root", nil)
			require.NoError(t, adapter.Save(ctx, src.Snapshot()))

			dst := store.New()
			require.NoError(t, adapter.Rehydrate(ctx, dst))

			want := src.Snapshot()
			got := dst.Snapshot()
			assert.Equal(t, cartLines(want.User.Cart), cartLines(got.User.Cart))
			assert.Equal(t, "u1", got.User.ID)
			assert.Equal(t, "alice", got.User.Username)
			assert.Equal(t, 3, got.Product.PageNo)
			assert.False(t, got.Product.IsLoading)
		})
	}
}

func TestRehydrateWithoutSnapshotKeepsInitialState(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := store.New()
			require.NoError(t, NewAdapter(backend, "empty", nil).Rehydrate(context.Background(), s))

			state := s.Snapshot()
			assert.False(t, state.User.SignedIn())
			assert.Equal(t, 1, state.Product.PageNo)
		})
	}
}

func TestRehydrateIgnoresCorruptSnapshot(t *testing.T) {
	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fb.Save(ctx, Key("root"), []byte("{not json")))
	s := store.New()
	require.NoError(t, NewAdapter(fb, "root", nil).Rehydrate(ctx, s))
	assert.False(t, s.User().SignedIn())

	require.NoError(t, fb.Save(ctx, Key("root"), []byte(`{"version":99,"state":{"user":{"_id":"x"}}}`)))
	require.NoError(t, NewAdapter(fb, "root", nil).Rehydrate(ctx, s))
	assert.False(t, s.User().SignedIn())
}

type failingBackend struct {
	err   error
	saves int
}

func (f *failingBackend) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, f.err
}

func (f *failingBackend) Save(ctx context.Context, key string, data []byte) error {
	f.saves++
	return f.err
}

func TestRehydrateSurfacesBackendError(t *testing.T) {
	boom := errors.New("disk gone")
	err := NewAdapter(&failingBackend{err: boom}, "root", nil).Rehydrate(context.Background(), store.New())
	assert.ErrorIs(t, err, boom)
}

func TestAttachWritesThrough(t *testing.T) {
	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	adapter := NewAdapter(fb, "root", nil)

	s := store.New()
	detach := adapter.Attach(s)
	u := model.EmptyUser()
	u.ID = "u9"
	s.SetUser(u)
	s.AddToCart(model.NewCartItem(model.Product{ID: "a", Price: decimal.NewFromInt(1)}, 2))

	restored := store.New()
	require.NoError(t, adapter.Rehydrate(ctx, restored))
	assert.Equal(t, []cartLine{{ID: "a", Qty: 2, Price: "1"}}, cartLines(restored.User().Cart))

	detach()
	s.ClearCart()
	restored = store.New()
	require.NoError(t, adapter.Rehydrate(ctx, restored))
	assert.Len(t, restored.User().Cart, 1)
}

func TestAttachSaveErrorDoesNotBreakDispatch(t *testing.T) {
	backend := &failingBackend{err: errors.New("read only")}
	s := store.New()
	NewAdapter(backend, "root", nil).Attach(s)

	require.NotPanics(t, func() { s.SetPage(2) })
	assert.Equal(t, 2, s.Products().PageNo)
	assert.Equal(t, 1, backend.saves)
}

func TestFileBackendKeyIsSanitized(t *testing.T) {
	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, fb.Save(context.Background(), "persist:root", []byte("{}")))

	_, err = os.Stat(fb.path("persist:root"))
	assert.NoError(t, err)
	assert.Contains(t, fb.path("persist:root"), "persist_root.json")
}

func TestDBBackend(t *testing.T) {
	dsn := os.Getenv("STOREFRONT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_PG_DSN not set")
	}
	db, err := OpenPostgres(dsn)
	require.NoError(t, err)
	backend, err := NewDBBackend(db)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	key := Key("test-" + t.Name())
	require.NoError(t, db.Where("snapshot_key = ?", key).Delete(&Snapshot{}).Error)

	_, err = backend.Load(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Save(ctx, key, []byte(`{"v":1}`)))
	require.NoError(t, backend.Save(ctx, key, []byte(`{"v":2}`)))
	got, err := backend.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))
}
