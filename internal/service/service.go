package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/api"
	"github.com/RoyceAzure/lab/storefront/internal/store"
)

var (
	ErrNotSignedIn = store.ErrNotSignedIn
	ErrEmptyCart   = errors.New("cart is empty")
	ErrLastPage    = errors.New("already on the last page")
	ErrFirstPage   = errors.New("already on the first page")
)

type CatalogAPI interface {
	FetchProductPage(ctx context.Context, pageNo int) ([]model.Product, error)
	FetchProduct(ctx context.Context, id string) (model.Product, error)
}

type CartAPI interface {
	AddToCart(ctx context.Context, userID string, product model.Product) ([]model.CartItem, error)
	RemoveFromCart(ctx context.Context, userID string, product model.Product) ([]model.CartItem, error)
}

type OrderAPI interface {
	PlaceOrder(ctx context.Context, userID string, cart []model.CartItem) error
}

type AuthAPI interface {
	Login(ctx context.Context, username, password string) (api.LoginResponse, error)
	Register(ctx context.Context, username, password string) (api.LoginResponse, error)
}

var (
	_ CatalogAPI = (*api.Client)(nil)
	_ CartAPI    = (*api.Client)(nil)
	_ OrderAPI   = (*api.Client)(nil)
	_ AuthAPI    = (*api.Client)(nil)
)
