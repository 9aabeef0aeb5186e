package appcontext

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/fakeapi"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	return &config.Config{
		ApiBaseUrl:         baseURL,
		PersistBackend:     config.PersistFile,
		PersistNamespace:   "root",
		PersistDir:         t.TempDir(),
		DeliveryCharge:     "15",
		DiscardStaleOrders: true,
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	srv := httptest.NewServer(fakeapi.New(fakeapi.DefaultCatalog(15), nil))
	defer srv.Close()
	ctx := context.Background()
	cf := testConfig(t, srv.URL+"/api")

	app, err := NewApplicationContext(ctx, cf, nil)
	require.NoError(t, err)
	_, err = app.AuthService.Register(ctx, "gina", "pw")
	require.NoError(t, err)
	require.NoError(t, app.CatalogService.LoadPage(ctx))
	products := app.Store.Products().Products
	require.NotEmpty(t, products)
	require.NoError(t, app.CartService.Add(ctx, products[0]))
	require.NoError(t, app.Shutdown(ctx))

	restarted, err := NewApplicationContext(ctx, cf, nil)
	require.NoError(t, err)
	defer restarted.Shutdown(ctx)

	user := restarted.Store.User()
	assert.Equal(t, "gina", user.Username)
	require.Len(t, user.Cart, 1)
	assert.Equal(t, products[0].ID, user.Cart[0].ID)
	assert.Len(t, restarted.Store.Products().Products, 12)

	require.NoError(t, restarted.OrderService.Checkout(ctx))
	require.NoError(t, restarted.OrderService.Refresh(ctx))
	assert.Len(t, restarted.Store.User().Orders, 1)
	assert.Empty(t, restarted.Store.User().Cart)
}

func TestPersistNoneStartsEmpty(t *testing.T) {
	cf := testConfig(t, "http://127.0.0.1:1/api")
	cf.PersistBackend = config.PersistNone

	app, err := NewApplicationContext(context.Background(), cf, nil)
	require.NoError(t, err)
	defer app.Shutdown(context.Background())

	assert.Nil(t, app.Persist)
	assert.Nil(t, app.Publisher)
	assert.Equal(t, model.EmptyUser().ID, app.Store.User().ID)
	assert.Equal(t, "15", app.Cf.DeliveryChargeDecimal().String())
}

func TestUnknownBackend(t *testing.T) {
	cf := testConfig(t, "http://127.0.0.1:1/api")
	cf.PersistBackend = "tape"

	_, err := NewApplicationContext(context.Background(), cf, nil)
	assert.Error(t, err)
}

func TestRedisSessionSurvivesRestart(t *testing.T) {
	srv := httptest.NewServer(fakeapi.New(fakeapi.DefaultCatalog(15), nil))
	defer srv.Close()
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cf := testConfig(t, srv.URL+"/api")
	cf.PersistBackend = config.PersistRedis
	cf.RedisAddr = mr.Addr()

	app, err := NewApplicationContext(ctx, cf, nil)
	require.NoError(t, err)
	_, err = app.AuthService.Register(ctx, "hana", "pw")
	require.NoError(t, err)
	require.NoError(t, app.CatalogService.LoadPage(ctx))
	products := app.Store.Products().Products
	require.NotEmpty(t, products)
	require.NoError(t, app.CartService.Add(ctx, products[1]))
	require.NoError(t, app.Shutdown(ctx))

	assert.True(t, mr.Exists("storefront:persist:root"))

	restarted, err := NewApplicationContext(ctx, cf, nil)
	require.NoError(t, err)
	defer restarted.Shutdown(ctx)

	user := restarted.Store.User()
	assert.Equal(t, "hana", user.Username)
	require.Len(t, user.Cart, 1)
	assert.Equal(t, products[1].ID, user.Cart[0].ID)

	// 重啟後仍可寫入
	require.NoError(t, restarted.CartService.Add(ctx, products[1]))
	assert.Equal(t, 2, restarted.Store.User().Cart[0].Quantity)
}

func TestRedisUnreachableFailsAtStartup(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cf := testConfig(t, "http://127.0.0.1:1/api")
	cf.PersistBackend = config.PersistRedis
	cf.RedisAddr = addr

	_, err := NewApplicationContext(context.Background(), cf, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}
