package fakeapi

import (
	"errors"
	"fmt"
	"os"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const PageSize = 12

var ErrProductNotFound = errors.New("product not found")

type productSeed struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Image        string  `yaml:"image"`
	Brand        string  `yaml:"brand"`
	Category     string  `yaml:"category"`
	Price        string  `yaml:"price"`
	Description  string  `yaml:"description"`
	Rating       float64 `yaml:"rating"`
	NumReviews   int     `yaml:"num_reviews"`
	CountInStock int     `yaml:"count_in_stock"`
}

type catalogFile struct {
	Products []productSeed `yaml:"products"`
}

// Catalog 唯讀商品目錄，順序即分頁順序
type Catalog struct {
	products []model.Product
	byID     map[string]int
}

func NewCatalog(products []model.Product) *Catalog {
	c := &Catalog{
		products: append([]model.Product(nil), products...),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	products := make([]model.Product, 0, len(f.Products))
	for _, s := range f.Products {
		if s.ID == "" {
			return nil, fmt.Errorf("parse catalog: product %q has no id", s.Name)
		}
		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			return nil, fmt.Errorf("parse catalog: price of %s: %w", s.ID, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("parse catalog: price of %s is negative", s.ID)
		}
		products = append(products, model.Product{
			ID:           s.ID,
			Name:         s.Name,
			Image:        s.Image,
			Brand:        s.Brand,
			Category:     s.Category,
			Price:        price,
			Description:  s.Description,
			Rating:       s.Rating,
			NumReviews:   s.NumReviews,
			CountInStock: s.CountInStock,
		})
	}
	return NewCatalog(products), nil
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog n 筆產生的商品
func DefaultCatalog(n int) *Catalog {
	brands := []string{"Acme", "Globex", "Initech", "Umbrella"}
	categories := []string{"Electronics", "Books", "Home", "Sports"}
	products := make([]model.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, model.Product{
			ID:           fmt.Sprintf("p%03d", i),
			Name:         fmt.Sprintf("Product %d", i),
			Image:        fmt.Sprintf("/images/p%03d.jpg", i),
			Brand:        brands[i%len(brands)],
			Category:     categories[i%len(categories)],
			Price:        decimal.NewFromInt(int64(100 + i)).Div(decimal.NewFromInt(4)),
			Description:  fmt.Sprintf("Description of product %d", i),
			Rating:       float64(i%5) + 0.5,
			NumReviews:   i * 3,
			CountInStock: 5 + i%10,
		})
	}
	return NewCatalog(products)
}

// Page pageNo 從 1 開始，超出範圍回傳空 slice
func (c *Catalog) Page(pageNo int) []model.Product {
	start := (pageNo - 1) * PageSize
	if pageNo < 1 || start >= len(c.products) {
		return []model.Product{}
	}
	end := min(start+PageSize, len(c.products))
	return append([]model.Product{}, c.products[start:end]...)
}

func (c *Catalog) Get(id string) (model.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}
