package fakeapi

import (
	"errors"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/cart"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotRegistered  = errors.New("user not registered")
	ErrUserExists         = errors.New("user already registered")
	ErrWrongCredentials   = errors.New("wrong credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("username and password are required")
)

type userEntry struct {
	record       model.UserRecord
	passwordHash []byte
}

// UserStore 記憶體內的使用者、購物車、訂單
type UserStore struct {
	mu      sync.Mutex
	users   map[string]*userEntry
	byName  map[string]string
	catalog *Catalog
	now     func() time.Time
}

func NewUserStore(catalog *Catalog) *UserStore {
	return &UserStore{
		users:   make(map[string]*userEntry),
		byName:  make(map[string]string),
		catalog: catalog,
		now:     time.Now,
	}
}

func (s *UserStore) Register(username, password string) (model.UserRecord, error) {
	if username == "" || password == "" {
		return model.UserRecord{}, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.UserRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[username]; ok {
		return model.UserRecord{}, ErrUserExists
	}
	record := model.EmptyUser()
	record.ID = uuid.NewString()
	record.Username = username
	s.users[record.ID] = &userEntry{record: record, passwordHash: hash}
	s.byName[username] = record.ID
	return record.Clone(), nil
}

func (s *UserStore) Login(username, password string) (model.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[username]
	if !ok {
		return model.UserRecord{}, ErrUserNotRegistered
	}
	entry := s.users[id]
	if err := bcrypt.CompareHashAndPassword(entry.passwordHash, []byte(password)); err != nil {
		return model.UserRecord{}, ErrWrongCredentials
	}
	return entry.record.Clone(), nil
}

// AddToCart 以目錄資料為準，目錄沒有的商品沿用 client 送來的內容
func (s *UserStore) AddToCart(userID string, product model.Product) ([]model.CartItem, error) {
	if p, err := s.catalog.Get(product.ID); err == nil {
		product = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	if product.CountInStock > 0 && cart.Quantity(entry.record.Cart, product.ID) >= product.CountInStock {
		return nil, ErrInsufficientStock
	}
	entry.record.Cart = cart.Add(entry.record.Cart, model.NewCartItem(product, 1))
	return model.CloneCart(entry.record.Cart), nil
}

func (s *UserStore) RemoveFromCart(userID string, product model.Product) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	entry.record.Cart = cart.Remove(entry.record.Cart, product)
	return model.CloneCart(entry.record.Cart), nil
}

// PlaceOrder 以 client 送來的購物車建立訂單並清空 server 端購物車
func (s *UserStore) PlaceOrder(userID string, items []model.CartItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	date := s.now().UTC().Format(time.RFC3339)
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		entry.record.Orders = append(entry.record.Orders, model.OrderItem{CartItem: item, Date: date})
	}
	entry.record.Cart = []model.CartItem{}
	return nil
}

// Orders 舊到新
func (s *UserStore) Orders(userID string) ([]model.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return model.CloneOrders(entry.record.Orders), nil
}
