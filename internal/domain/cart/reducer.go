// Package cart 購物車狀態轉移，純函數，不修改傳入的 slice
package cart

import "github.com/RoyceAzure/lab/storefront/internal/domain/model"

// Add 已存在則數量 +1，其餘欄位維持原樣
// 不存在則 append，數量沿用傳入值 (小於 1 視為 1)
func Add(cart []model.CartItem, item model.CartItem) []model.CartItem {
	out := model.CloneCart(cart)
	for i := range out {
		if out[i].ID == item.ID {
			out[i].Quantity++
			return out
		}
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	return append(out, item)
}

// Remove 數量 -1，剛好歸零則刪除
// 不存在的 id 不做任何事
func Remove(cart []model.CartItem, product model.Product) []model.CartItem {
	out := model.CloneCart(cart)
	for i := range out {
		if out[i].ID != product.ID {
			continue
		}
		out[i].Quantity--
		if out[i].Quantity <= 0 {
			return append(out[:i], out[i+1:]...)
		}
		return out
	}
	return out
}

// Reconcile 以 server 回傳的數量覆蓋本地
// quantity <= 0 代表 server 端已無此品項
func Reconcile(cart []model.CartItem, item model.CartItem) []model.CartItem {
	out := model.CloneCart(cart)
	for i := range out {
		if out[i].ID != item.ID {
			continue
		}
		if item.Quantity <= 0 {
			return append(out[:i], out[i+1:]...)
		}
		out[i] = item
		return out
	}
	if item.Quantity <= 0 {
		return out
	}
	return append(out, item)
}

// Quantity 回傳 id 目前數量，不存在為 0
func Quantity(cart []model.CartItem, id string) int {
	if item, ok := model.FindCartItem(cart, id); ok {
		return item.Quantity
	}
	return 0
}
