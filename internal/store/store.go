package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/rs/zerolog"
)

var (
	// ErrStaleResponse 已有較新的請求發出，或使用者已切換，回應被丟棄
	ErrStaleResponse = errors.New("stale response discarded")
	ErrNotSignedIn   = errors.New("user is not signed in")
)

// OrdersFetcher 取得 server 端訂單 (時間先後排序)
type OrdersFetcher interface {
	FetchOrders(ctx context.Context, userID string) ([]model.OrderItem, error)
}

// Listener 在 dispatch 鎖內依序呼叫，不可在 listener 內再 dispatch
type Listener func(action Action, state State)

type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	order     []int
	nextID    int

	fetcher      OrdersFetcher
	ordersSeq    uint64
	discardStale bool
	logger       *zerolog.Logger
}

type Option func(*Store)

func WithOrdersFetcher(f OrdersFetcher) Option {
	return func(s *Store) {
		s.fetcher = f
	}
}

// WithStaleGuard false 時回到最後回應者覆蓋的行為
func WithStaleGuard(enabled bool) Option {
	return func(s *Store) {
		s.discardStale = enabled
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithInitialState(state State) Option {
	return func(s *Store) {
		s.state = state.Clone()
	}
}

func New(opts ...Option) *Store {
	nop := zerolog.Nop()
	s := &Store{
		state:        InitialState(),
		listeners:    make(map[int]Listener),
		discardStale: true,
		logger:       &nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch 套用 action 並通知所有 listener
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(action)
}

func (s *Store) dispatchLocked(action Action) {
	s.state = reduce(s.state, action)
	s.logger.Debug().Str("action", string(action.Type())).Msg("dispatched")
	if len(s.order) == 0 {
		return
	}
	snapshot := s.state.Clone()
	for _, id := range s.order {
		s.listeners[id](action, snapshot)
	}
}

// Subscribe 回傳取消訂閱函數
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			s.order = slices.DeleteFunc(s.order, func(v int) bool { return v == id })
		})
	}
}

// Snapshot 回傳目前狀態的複本
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) User() model.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User.Clone()
}

func (s *Store) Products() model.ProductState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Product.Clone()
}

func (s *Store) SetUser(user model.UserRecord) {
	s.Dispatch(SetUserAction{User: user})
}

func (s *Store) AddToCart(item model.CartItem) {
	s.Dispatch(AddToCartAction{Item: item})
}

func (s *Store) RemoveFromCart(product model.Product) {
	s.Dispatch(RemoveFromCartAction{Product: product})
}

func (s *Store) ReconcileCartItem(item model.CartItem) {
	s.Dispatch(ReconcileCartItemAction{Item: item})
}

func (s *Store) ClearCart() {
	s.Dispatch(ClearCartAction{})
}

func (s *Store) ReplaceProducts(products []model.Product) {
	s.Dispatch(ReplaceProductsAction{Products: products})
}

func (s *Store) SetPage(n int) {
	s.Dispatch(SetPageAction{PageNo: n})
}

func (s *Store) IncrementPage(k int) {
	s.Dispatch(IncrementPageAction{By: k})
}

func (s *Store) DecrementPage(k int) {
	s.Dispatch(DecrementPageAction{By: k})
}

func (s *Store) SetLoading(loading bool) {
	s.Dispatch(SetLoadingAction{IsLoading: loading})
}

func (s *Store) SetCurrentProduct(p model.Product) {
	s.Dispatch(SetCurrentProductAction{Product: p})
}

/*
RefreshOrders 向 server 取得訂單，反轉成新到舊後整包替換
請求期間舊資料保持可見，失敗時不動 state 並回傳錯誤
每次呼叫取得遞增序號，回應時若已有更新的請求或使用者已切換則丟棄
*/
func (s *Store) RefreshOrders(ctx context.Context, userID string) error {
	if s.fetcher == nil {
		return fmt.Errorf("refresh orders: no orders fetcher configured")
	}
	if userID == "" {
		return ErrNotSignedIn
	}

	s.mu.Lock()
	s.ordersSeq++
	seq := s.ordersSeq
	s.mu.Unlock()

	orders, err := s.fetcher.FetchOrders(ctx, userID)
	if err != nil {
		return fmt.Errorf("refresh orders: %w", err)
	}

	reversed := model.CloneOrders(orders)
	slices.Reverse(reversed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discardStale && (seq != s.ordersSeq || s.state.User.ID != userID) {
		s.logger.Debug().
			Uint64("seq", seq).
			Uint64("latest", s.ordersSeq).
			Str("user_id", userID).
			Msg("discard stale orders response")
		return ErrStaleResponse
	}
	s.dispatchLocked(SetOrdersAction{Orders: reversed})
	return nil
}
