package api

import "github.com/RoyceAzure/lab/storefront/internal/domain/model"

type ProductPageRequest struct {
	PageNo int `json:"pageNo"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string           `json:"message"`
	User    model.UserRecord `json:"user"`
}

type CartMutationRequest struct {
	UserID string        `json:"userId"`
	Cart   model.Product `json:"cart"`
}

type CartResponse struct {
	Cart []model.CartItem `json:"cart"`
}

type PlaceOrderRequest struct {
	UserID string           `json:"userId"`
	Cart   []model.CartItem `json:"cart"`
}

type UserIDRequest struct {
	UserID string `json:"userId"`
}

type OrdersResponse struct {
	Orders []model.OrderItem `json:"orders"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
