package model

import "github.com/shopspring/decimal"

// CartItem 以 Product.ID 為識別
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

func NewCartItem(p Product, quantity int) CartItem {
	return CartItem{Product: p, Quantity: quantity}
}

// LineAmount price * quantity
func (c CartItem) LineAmount() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// OrderItem 下單當下的購物車快照
type OrderItem struct {
	CartItem
	Date string `json:"date"`
}

func CloneCart(cart []CartItem) []CartItem {
	out := make([]CartItem, len(cart))
	copy(out, cart)
	return out
}

func CloneOrders(orders []OrderItem) []OrderItem {
	out := make([]OrderItem, len(orders))
	copy(out, orders)
	return out
}

// FindCartItem 回傳 id 對應的 item，ok 為 false 代表不存在
func FindCartItem(cart []CartItem, id string) (CartItem, bool) {
	for _, item := range cart {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}
