package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/api"
	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/rs/zerolog"
)

type ICatalogService interface {
	LoadPage(ctx context.Context) error
	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
	ShowProduct(ctx context.Context, id string) (model.Product, error)
}

type CatalogService struct {
	store  *store.Store
	client CatalogAPI
	logger *zerolog.Logger
}

var _ ICatalogService = (*CatalogService)(nil)

func NewCatalogService(s *store.Store, client CatalogAPI, logger *zerolog.Logger) *CatalogService {
	if s == nil {
		panic("catalogService dependency store is nil")
	}
	if client == nil {
		panic("catalogService dependency client is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CatalogService{store: s, client: client, logger: logger}
}

// HasNextPage 回傳筆數等於一頁上限才有下一頁
func HasNextPage(state model.ProductState) bool {
	return len(state.Products) == api.PageSize
}

func HasPrevPage(state model.ProductState) bool {
	return state.PageNo > 1
}

/*
LoadPage 取得目前頁碼的商品
loading 旗標一定會清除，失敗時保留上一頁資料
*/
func (c *CatalogService) LoadPage(ctx context.Context) error {
	pageNo := c.store.Products().PageNo
	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	products, err := c.client.FetchProductPage(ctx, pageNo)
	if err != nil {
		c.logger.Error().Err(err).Int("page_no", pageNo).Msg("fetch product page failed")
		return err
	}
	c.store.ReplaceProducts(products)
	return nil
}

func (c *CatalogService) NextPage(ctx context.Context) error {
	if !HasNextPage(c.store.Products()) {
		return ErrLastPage
	}
	return c.movePage(ctx, 1)
}

func (c *CatalogService) PrevPage(ctx context.Context) error {
	if !HasPrevPage(c.store.Products()) {
		return ErrFirstPage
	}
	return c.movePage(ctx, -1)
}

// 載入失敗時頁碼回到原本位置，與保留的商品一致
func (c *CatalogService) movePage(ctx context.Context, delta int) error {
	if delta > 0 {
		c.store.IncrementPage(delta)
	} else {
		c.store.DecrementPage(-delta)
	}
	if err := c.LoadPage(ctx); err != nil {
		if delta > 0 {
			c.store.DecrementPage(delta)
		} else {
			c.store.IncrementPage(-delta)
		}
		return err
	}
	return nil
}

func (c *CatalogService) ShowProduct(ctx context.Context, id string) (model.Product, error) {
	p, err := c.client.FetchProduct(ctx, id)
	if err != nil {
		c.logger.Error().Err(err).Str("product_id", id).Msg("fetch product failed")
		return model.Product{}, err
	}
	c.store.SetCurrentProduct(p)
	return p, nil
}
