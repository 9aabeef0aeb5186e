package store

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/cart"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

// State 根狀態，對應 user 與 product 兩個 slice
type State struct {
	User    model.UserRecord   `json:"user"`
	Product model.ProductState `json:"product"`
}

func InitialState() State {
	return State{
		User:    model.EmptyUser(),
		Product: model.InitialProductState(),
	}
}

func (s State) Clone() State {
	return State{
		User:    s.User.Clone(),
		Product: s.Product.Clone(),
	}
}

func reduce(s State, action Action) State {
	switch a := action.(type) {
	case RehydrateAction:
		return a.State.Clone()
	case ReplaceProductsAction, SetPageAction, IncrementPageAction, DecrementPageAction,
		SetLoadingAction, SetCurrentProductAction:
		s.Product = reduceProduct(s.Product, action)
	default:
		s.User = reduceUser(s.User, action)
	}
	return s
}

func reduceUser(u model.UserRecord, action Action) model.UserRecord {
	switch a := action.(type) {
	case SetUserAction:
		return a.User.Clone()
	case AddToCartAction:
		// 未登入時購物車操作不生效
		if !u.SignedIn() {
			return u
		}
		u.Cart = cart.Add(u.Cart, a.Item)
	case RemoveFromCartAction:
		if !u.SignedIn() {
			return u
		}
		u.Cart = cart.Remove(u.Cart, a.Product)
	case ReconcileCartItemAction:
		if !u.SignedIn() {
			return u
		}
		u.Cart = cart.Reconcile(u.Cart, a.Item)
	case ClearCartAction:
		u.Cart = []model.CartItem{}
	case SetOrdersAction:
		u.Orders = model.CloneOrders(a.Orders)
	}
	return u
}

func reduceProduct(p model.ProductState, action Action) model.ProductState {
	switch a := action.(type) {
	case ReplaceProductsAction:
		p.Products = append([]model.Product{}, a.Products...)
	case SetPageAction:
		p.PageNo = a.PageNo
	case IncrementPageAction:
		p.PageNo += a.By
	case DecrementPageAction:
		// 不做下限檢查，由呼叫端處理
		p.PageNo -= a.By
	case SetLoadingAction:
		p.IsLoading = a.IsLoading
	case SetCurrentProductAction:
		p.CurrentProduct = a.Product
	}
	return p
}
