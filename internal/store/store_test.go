package store

import (
	"context"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string) model.Product {
	return model.Product{ID: id, Name: id, Price: decimal.NewFromInt(10)}
}

func order(id, date string) model.OrderItem {
	return model.OrderItem{CartItem: model.NewCartItem(product(id), 1), Date: date}
}

func signedIn(id string) model.UserRecord {
	u := model.EmptyUser()
	u.ID = id
	u.Username = "user-" + id
	return u
}

func orderIDs(orders []model.OrderItem) []string {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}

type fetchReply struct {
	orders []model.OrderItem
	err    error
}

type pendingCall struct {
	userID string
	reply  chan fetchReply
}

// gatedFetcher 每次呼叫都等待測試端回覆
type gatedFetcher struct {
	calls chan *pendingCall
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan *pendingCall)}
}

func (f *gatedFetcher) FetchOrders(ctx context.Context, userID string) ([]model.OrderItem, error) {
	pc := &pendingCall{userID: userID, reply: make(chan fetchReply, 1)}
	f.calls <- pc
	r := <-pc.reply
	return r.orders, r.err
}

type staticFetcher struct {
	orders []model.OrderItem
	err    error
}

func (f staticFetcher) FetchOrders(ctx context.Context, userID string) ([]model.OrderItem, error) {
	return f.orders, f.err
}

func TestSignedOutCartOperationsAreNoops(t *testing.T) {
	s := New()
	s.SetUser(model.EmptyUser())

	require.NotPanics(t, func() {
		s.AddToCart(model.NewCartItem(product("a"), 1))
		s.RemoveFromCart(product("a"))
		s.ReconcileCartItem(model.NewCartItem(product("a"), 3))
		s.ClearCart()
	})
	assert.Empty(t, s.User().Cart)
}

func TestSetUserReplacesWholeRecord(t *testing.T) {
	s := New()
	u := signedIn("u1")
	u.Cart = []model.CartItem{model.NewCartItem(product("a"), 2)}
	s.SetUser(u)

	got := s.User()
	assert.True(t, got.SignedIn())
	assert.Equal(t, 2, got.Cart[0].Quantity)

	s.SetUser(model.EmptyUser())
	got = s.User()
	assert.False(t, got.SignedIn())
	assert.Empty(t, got.Cart)
}

func TestCartActions(t *testing.T) {
	s := New()
	s.SetUser(signedIn("u1"))

	s.AddToCart(model.NewCartItem(product("a"), 1))
	s.AddToCart(model.NewCartItem(product("a"), 1))
	s.AddToCart(model.NewCartItem(product("b"), 1))
	s.RemoveFromCart(product("b"))

	c := s.User().Cart
	require.Len(t, c, 1)
	assert.Equal(t, "a", c[0].ID)
	assert.Equal(t, 2, c[0].Quantity)

	s.ReconcileCartItem(model.NewCartItem(product("a"), 5))
	assert.Equal(t, 5, s.User().Cart[0].Quantity)

	s.ClearCart()
	assert.Empty(t, s.User().Cart)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.SetUser(signedIn("u1"))
	s.AddToCart(model.NewCartItem(product("a"), 1))

	snap := s.Snapshot()
	snap.User.Cart[0].Quantity = 99

	assert.Equal(t, 1, s.User().Cart[0].Quantity)
}

func TestProductActions(t *testing.T) {
	s := New()
	assert.Equal(t, 1, s.Products().PageNo)

	s.IncrementPage(2)
	assert.Equal(t, 3, s.Products().PageNo)
	s.DecrementPage(5)
	assert.Equal(t, -2, s.Products().PageNo)
	s.SetPage(4)
	assert.Equal(t, 4, s.Products().PageNo)

	s.SetLoading(true)
	assert.True(t, s.Products().IsLoading)

	s.ReplaceProducts([]model.Product{product("a"), product("b")})
	s.ReplaceProducts([]model.Product{product("c")})
	ps := s.Products()
	require.Len(t, ps.Products, 1)
	assert.Equal(t, "c", ps.Products[0].ID)

	s.SetCurrentProduct(product("z"))
	assert.Equal(t, "z", s.Products().CurrentProduct.ID)
}

func TestListenersRunInOrderAndUnsubscribe(t *testing.T) {
	s := New()
	var got []string

	unsubA := s.Subscribe(func(action Action, state State) {
		got = append(got, "a:"+string(action.Type()))
	})
	s.Subscribe(func(action Action, state State) {
		got = append(got, "b:"+string(action.Type()))
	})

	s.SetLoading(true)
	unsubA()
	unsubA()
	s.ClearCart()

	assert.Equal(t, []string{
		"a:" + string(SetLoadingActionName),
		"b:" + string(SetLoadingActionName),
		"b:" + string(ClearCartActionName),
	}, got)
}

func TestListenerSeesAppliedState(t *testing.T) {
	s := New()
	s.SetUser(signedIn("u1"))
	var seen int
	s.Subscribe(func(action Action, state State) {
		seen = len(state.User.Cart)
	})

	s.AddToCart(model.NewCartItem(product("a"), 1))
	assert.Equal(t, 1, seen)
}

func TestRefreshOrdersReversesServerList(t *testing.T) {
	f := staticFetcher{orders: []model.OrderItem{
		order("o1", "2024-01-01T00:00:00Z"),
		order("o2", "2024-02-01T00:00:00Z"),
	}}
	s := New(WithOrdersFetcher(f))
	s.SetUser(signedIn("u1"))

	require.NoError(t, s.RefreshOrders(context.Background(), "u1"))
	assert.Equal(t, []string{"o2", "o1"}, orderIDs(s.User().Orders))
}

func TestRefreshOrdersFailureKeepsOrders(t *testing.T) {
	boom := errors.New("boom")
	u := signedIn("u1")
	u.Orders = []model.OrderItem{order("old", "2023-01-01T00:00:00Z")}
	s := New(WithOrdersFetcher(staticFetcher{err: boom}))
	s.SetUser(u)

	err := s.RefreshOrders(context.Background(), "u1")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"old"}, orderIDs(s.User().Orders))
}

func TestRefreshOrdersRequiresUser(t *testing.T) {
	s := New(WithOrdersFetcher(staticFetcher{}))
	assert.ErrorIs(t, s.RefreshOrders(context.Background(), ""), ErrNotSignedIn)
}

func startRefresh(s *Store, f *gatedFetcher) (<-chan error, *pendingCall) {
	done := make(chan error, 1)
	go func() {
		done <- s.RefreshOrders(context.Background(), "u1")
	}()
	return done, <-f.calls
}

func TestRefreshOrdersDiscardsStaleResponse(t *testing.T) {
	f := newGatedFetcher()
	s := New(WithOrdersFetcher(f))
	s.SetUser(signedIn("u1"))

	firstDone, first := startRefresh(s, f)
	secondDone, second := startRefresh(s, f)

	second.reply <- fetchReply{orders: []model.OrderItem{order("new1", "1"), order("new2", "2")}}
	require.NoError(t, <-secondDone)

	first.reply <- fetchReply{orders: []model.OrderItem{order("old", "0")}}
	require.ErrorIs(t, <-firstDone, ErrStaleResponse)

	assert.Equal(t, []string{"new2", "new1"}, orderIDs(s.User().Orders))
}

func TestRefreshOrdersLastWriterWinsWhenGuardDisabled(t *testing.T) {
	f := newGatedFetcher()
	s := New(WithOrdersFetcher(f), WithStaleGuard(false))
	s.SetUser(signedIn("u1"))

	firstDone, first := startRefresh(s, f)
	secondDone, second := startRefresh(s, f)

	second.reply <- fetchReply{orders: []model.OrderItem{order("new", "1")}}
	require.NoError(t, <-secondDone)
	first.reply <- fetchReply{orders: []model.OrderItem{order("old", "0")}}
	require.NoError(t, <-firstDone)

	assert.Equal(t, []string{"old"}, orderIDs(s.User().Orders))
}

func TestRefreshOrdersDiscardedAfterLogout(t *testing.T) {
	f := newGatedFetcher()
	s := New(WithOrdersFetcher(f))
	s.SetUser(signedIn("u1"))

	done, call := startRefresh(s, f)
	s.SetUser(model.EmptyUser())
	call.reply <- fetchReply{orders: []model.OrderItem{order("o1", "1")}}

	require.ErrorIs(t, <-done, ErrStaleResponse)
	assert.Empty(t, s.User().Orders)
}

func TestRefreshOrdersKeepsOldOrdersWhileInFlight(t *testing.T) {
	f := newGatedFetcher()
	u := signedIn("u1")
	u.Orders = []model.OrderItem{order("old", "0")}
	s := New(WithOrdersFetcher(f))
	s.SetUser(u)

	done, call := startRefresh(s, f)
	assert.Equal(t, []string{"old"}, orderIDs(s.User().Orders))

	call.reply <- fetchReply{orders: []model.OrderItem{order("o1", "1")}}
	require.NoError(t, <-done)
	assert.Equal(t, []string{"o1"}, orderIDs(s.User().Orders))
}
