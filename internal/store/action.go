package store

import "github.com/RoyceAzure/lab/storefront/internal/domain/model"

type ActionType string

const (
	SetUserActionName           ActionType = "user/setUser"
	AddToCartActionName         ActionType = "user/addToCart"
	RemoveFromCartActionName    ActionType = "user/removeFromCart"
	ReconcileCartItemActionName ActionType = "user/reconcileCartItem"
	ClearCartActionName         ActionType = "user/clearCart"
	SetOrdersActionName         ActionType = "user/setOrders"

	ReplaceProductsActionName   ActionType = "product/replaceProducts"
	SetPageActionName           ActionType = "product/setPage"
	IncrementPageActionName     ActionType = "product/incrementPageBy"
	DecrementPageActionName     ActionType = "product/decrementPageBy"
	SetLoadingActionName        ActionType = "product/setIsLoading"
	SetCurrentProductActionName ActionType = "product/setCurrentProduct"

	RehydrateActionName ActionType = "persist/rehydrate"
)

type Action interface {
	Type() ActionType
}

type SetUserAction struct {
	User model.UserRecord `json:"user"`
}

func (a SetUserAction) Type() ActionType { return SetUserActionName }

// AddToCartAction Item.Quantity 只在新增品項時使用
type AddToCartAction struct {
	Item model.CartItem `json:"item"`
}

func (a AddToCartAction) Type() ActionType { return AddToCartActionName }

type RemoveFromCartAction struct {
	Product model.Product `json:"product"`
}

func (a RemoveFromCartAction) Type() ActionType { return RemoveFromCartActionName }

// ReconcileCartItemAction server 回傳數量為準
type ReconcileCartItemAction struct {
	Item model.CartItem `json:"item"`
}

func (a ReconcileCartItemAction) Type() ActionType { return ReconcileCartItemActionName }

type ClearCartAction struct{}

func (a ClearCartAction) Type() ActionType { return ClearCartActionName }

type SetOrdersAction struct {
	Orders []model.OrderItem `json:"orders"`
}

func (a SetOrdersAction) Type() ActionType { return SetOrdersActionName }

type ReplaceProductsAction struct {
	Products []model.Product `json:"products"`
}

func (a ReplaceProductsAction) Type() ActionType { return ReplaceProductsActionName }

type SetPageAction struct {
	PageNo int `json:"pageNo"`
}

func (a SetPageAction) Type() ActionType { return SetPageActionName }

type IncrementPageAction struct {
	By int `json:"by"`
}

func (a IncrementPageAction) Type() ActionType { return IncrementPageActionName }

type DecrementPageAction struct {
	By int `json:"by"`
}

func (a DecrementPageAction) Type() ActionType { return DecrementPageActionName }

type SetLoadingAction struct {
	IsLoading bool `json:"isLoading"`
}

func (a SetLoadingAction) Type() ActionType { return SetLoadingActionName }

type SetCurrentProductAction struct {
	Product model.Product `json:"product"`
}

func (a SetCurrentProductAction) Type() ActionType { return SetCurrentProductActionName }

// RehydrateAction 整包替換，由 persist 在啟動時發出
type RehydrateAction struct {
	State State `json:"state"`
}

func (a RehydrateAction) Type() ActionType { return RehydrateActionName }
