package model

import "github.com/shopspring/decimal"

/*
後端以 JSON number 傳遞價格
decimal.MarshalJSONWithoutQuotes 是套件層級設定，import model 的程式 (含 fakeapi) 都會以 number 輸出 decimal
不在 Product 上實作 MarshalJSON，否則內嵌 Product 的 CartItem 會被覆蓋而遺失 quantity
*/
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Product 商品目錄資料，client 端唯讀
type Product struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"` // 以 number 輸出，見 init
	Description  string          `json:"description"`
	Rating       float64         `json:"rating"`
	NumReviews   int             `json:"numReviews"`
	CountInStock int             `json:"countInStock"`
}

func (p Product) IsZero() bool {
	return p.ID == ""
}

type ProductState struct {
	Products       []Product `json:"products"`
	PageNo         int       `json:"pageNo"`
	IsLoading      bool      `json:"isLoading"`
	CurrentProduct Product   `json:"currentProduct"`
}

func InitialProductState() ProductState {
	return ProductState{
		Products: []Product{},
		PageNo:   1,
	}
}

func (s ProductState) Clone() ProductState {
	c := s
	c.Products = append([]Product(nil), s.Products...)
	if c.Products == nil {
		c.Products = []Product{}
	}
	return c
}
