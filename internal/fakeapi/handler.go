package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/go-chi/chi/v5"
)

type pageRequest struct {
	PageNo int `json:"pageNo"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type cartMutation struct {
	UserID string        `json:"userId"`
	Cart   model.Product `json:"cart"`
}

type placeOrder struct {
	UserID string           `json:"userId"`
	Cart   []model.CartItem `json:"cart"`
}

type userIDRequest struct {
	UserID string `json:"userId"`
}

type Handler struct {
	catalog *Catalog
	users   *UserStore
}

func NewHandler(catalog *Catalog, users *UserStore) *Handler {
	if catalog == nil {
		panic("fakeapi handler dependency catalog is nil")
	}
	if users == nil {
		panic("fakeapi handler dependency users is nil")
	}
	return &Handler{catalog: catalog, users: users}
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PageNo < 1 {
		writeMessage(w, http.StatusBadRequest, "invalid page number")
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Page(req.PageNo))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.users.Register(req.Username, req.Password)
	if err != nil {
		writeMessage(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "registered and logged in",
		"user":    user,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.users.Login(req.Username, req.Password)
	if err != nil {
		writeMessage(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "logged in successfully",
		"user":    user,
	})
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, h.users.AddToCart)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, h.users.RemoveFromCart)
}

func (h *Handler) mutateCart(w http.ResponseWriter, r *http.Request, mutate func(string, model.Product) ([]model.CartItem, error)) {
	var req cartMutation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Cart.IsZero() {
		writeMessage(w, http.StatusBadRequest, "product id is required")
		return
	}
	c, err := mutate(req.UserID, req.Cart)
	if err != nil {
		writeMessage(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (h *Handler) AddToOrders(w http.ResponseWriter, r *http.Request) {
	var req placeOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.users.PlaceOrder(req.UserID, req.Cart); err != nil {
		writeMessage(w, statusOf(err), err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "order placed")
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	var req userIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	orders, err := h.users.Orders(req.UserID)
	if err != nil {
		writeMessage(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrUserNotRegistered), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrWrongCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserExists), errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
