package model

import "github.com/shopspring/decimal"

// DefaultDeliveryCharge 每一個購物車品項固定運費
var DefaultDeliveryCharge = decimal.NewFromInt(15)

type CartTotals struct {
	Subtotal decimal.Decimal
	Delivery decimal.Decimal
	Total    decimal.Decimal
}

/*
計算購物車金額
subtotal = sum(price * qty)
delivery = charge * 品項數
*/
func CalculateCartTotals(cart []CartItem, deliveryCharge decimal.Decimal) CartTotals {
	subtotal := decimal.NewFromInt(0)
	for _, item := range cart {
		subtotal = subtotal.Add(item.LineAmount())
	}
	delivery := deliveryCharge.Mul(decimal.NewFromInt(int64(len(cart))))
	return CartTotals{
		Subtotal: subtotal,
		Delivery: delivery,
		Total:    subtotal.Add(delivery),
	}
}

// LineTotal 單一品項含運費
func LineTotal(item CartItem, deliveryCharge decimal.Decimal) decimal.Decimal {
	return item.LineAmount().Add(deliveryCharge)
}
