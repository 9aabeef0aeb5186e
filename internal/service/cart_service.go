package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/rs/zerolog"
)

type ICartService interface {
	Add(ctx context.Context, product model.Product) error
	Remove(ctx context.Context, product model.Product) error
}

// CartService 先樂觀更新本地，再以 server 回傳的購物車為準
type CartService struct {
	store  *store.Store
	client CartAPI
	logger *zerolog.Logger
}

var _ ICartService = (*CartService)(nil)

func NewCartService(s *store.Store, client CartAPI, logger *zerolog.Logger) *CartService {
	if s == nil {
		panic("cartService dependency store is nil")
	}
	if client == nil {
		panic("cartService dependency client is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CartService{store: s, client: client, logger: logger}
}

func (c *CartService) Add(ctx context.Context, product model.Product) error {
	user := c.store.User()
	if !user.SignedIn() {
		return ErrNotSignedIn
	}
	prior, existed := model.FindCartItem(user.Cart, product.ID)

	c.store.AddToCart(model.NewCartItem(product, 1))

	serverCart, err := c.client.AddToCart(ctx, user.ID, product)
	if err != nil {
		c.rollback(product, prior, existed)
		c.logger.Error().Err(err).Str("product_id", product.ID).Msg("add to cart failed")
		return err
	}

	// server 沒有此品項代表未加入
	item, ok := model.FindCartItem(serverCart, product.ID)
	if !ok {
		item = model.NewCartItem(product, 0)
	}
	c.store.ReconcileCartItem(item)
	return nil
}

func (c *CartService) Remove(ctx context.Context, product model.Product) error {
	user := c.store.User()
	if !user.SignedIn() {
		return ErrNotSignedIn
	}
	prior, existed := model.FindCartItem(user.Cart, product.ID)

	c.store.RemoveFromCart(product)

	serverCart, err := c.client.RemoveFromCart(ctx, user.ID, product)
	if err != nil {
		c.rollback(product, prior, existed)
		c.logger.Error().Err(err).Str("product_id", product.ID).Msg("remove from cart failed")
		return err
	}

	// server 已刪除時保留本地的單次扣減
	if item, ok := model.FindCartItem(serverCart, product.ID); ok {
		c.store.ReconcileCartItem(item)
	}
	return nil
}

// rollback 回到樂觀更新前的狀態
func (c *CartService) rollback(product model.Product, prior model.CartItem, existed bool) {
	if existed {
		c.store.ReconcileCartItem(prior)
		return
	}
	c.store.ReconcileCartItem(model.NewCartItem(product, 0))
}
