package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type IOrderService interface {
	Checkout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Totals(cart []model.CartItem) model.CartTotals
	LineTotal(item model.CartItem) decimal.Decimal
}

type OrderService struct {
	store          *store.Store
	client         OrderAPI
	deliveryCharge decimal.Decimal
	logger         *zerolog.Logger
}

var _ IOrderService = (*OrderService)(nil)

func NewOrderService(s *store.Store, client OrderAPI, deliveryCharge decimal.Decimal, logger *zerolog.Logger) *OrderService {
	if s == nil {
		panic("orderService dependency store is nil")
	}
	if client == nil {
		panic("orderService dependency client is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OrderService{store: s, client: client, deliveryCharge: deliveryCharge, logger: logger}
}

// Checkout 下單成功後才清空購物車
func (o *OrderService) Checkout(ctx context.Context) error {
	user := o.store.User()
	if !user.SignedIn() {
		return ErrNotSignedIn
	}
	if len(user.Cart) == 0 {
		return ErrEmptyCart
	}
	if err := o.client.PlaceOrder(ctx, user.ID, user.Cart); err != nil {
		o.logger.Error().Err(err).Str("user_id", user.ID).Msg("place order failed")
		return err
	}
	o.store.ClearCart()
	return nil
}

// Refresh 被較新請求取代的回應不視為錯誤
func (o *OrderService) Refresh(ctx context.Context) error {
	user := o.store.User()
	if !user.SignedIn() {
		return ErrNotSignedIn
	}
	err := o.store.RefreshOrders(ctx, user.ID)
	if errors.Is(err, store.ErrStaleResponse) {
		return nil
	}
	if err != nil {
		o.logger.Error().Err(err).Str("user_id", user.ID).Msg("refresh orders failed")
	}
	return err
}

func (o *OrderService) Totals(cart []model.CartItem) model.CartTotals {
	return model.CalculateCartTotals(cart, o.deliveryCharge)
}

func (o *OrderService) LineTotal(item model.CartItem) decimal.Decimal {
	return model.LineTotal(item, o.deliveryCharge)
}
