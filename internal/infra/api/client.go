// Package api 對遠端 /api 的無狀態請求，單次來回，不重試
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// PageSize server 每頁固定筆數，不足代表最後一頁
	PageSize = 12

	RequestIDHeader = "X-Request-ID"
)

type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zerolog.Logger
}

type Option func(*Client)

// WithTimeout 0 代表不設上限
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	nop := zerolog.Nop()
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  &nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.timeout}
	return c
}

func (c *Client) FetchProductPage(ctx context.Context, pageNo int) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, "fetchProductPage", http.MethodPost, "/products", ProductPageRequest{PageNo: pageNo}, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (c *Client) FetchProduct(ctx context.Context, id string) (model.Product, error) {
	if id == "" {
		return model.Product{}, ErrEmptyID
	}
	var p model.Product
	err := c.do(ctx, "fetchProduct", http.MethodGet, "/products/"+url.PathEscape(id), nil, &p)
	return p, err
}

// Login 成功回傳 server 訊息與使用者，失敗回傳 *AuthError (server 有給訊息時)
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	return c.authenticate(ctx, "login", "/users/login", username, password)
}

func (c *Client) Register(ctx context.Context, username, password string) (LoginResponse, error) {
	return c.authenticate(ctx, "register", "/users/register", username, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, username, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, op, http.MethodPost, path, CredentialsRequest{Username: username, Password: password}, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && isAuthStatus(statusErr.StatusCode) && statusErr.Message != "" {
			return LoginResponse{}, &AuthError{
				Outcome: ClassifyLoginMessage(statusErr.Message),
				Message: statusErr.Message,
				Err:     err,
			}
		}
		return LoginResponse{}, err
	}
	// 2xx 但沒有帶回使用者，視為失敗
	if !resp.User.SignedIn() {
		outcome := ClassifyLoginMessage(resp.Message)
		if outcome == LoginOK {
			outcome = LoginWrongCredentials
		}
		return LoginResponse{}, &AuthError{Outcome: outcome, Message: resp.Message}
	}
	return resp, nil
}

// 只有 401/404 代表帳號或密碼問題，其餘 (400/409/429/5xx) 維持 *StatusError
func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusNotFound
}

// AddToCart 回傳 server 端完整購物車
func (c *Client) AddToCart(ctx context.Context, userID string, product model.Product) ([]model.CartItem, error) {
	return c.mutateCart(ctx, "addToCart", "/users/addToCart", userID, product)
}

func (c *Client) RemoveFromCart(ctx context.Context, userID string, product model.Product) ([]model.CartItem, error) {
	return c.mutateCart(ctx, "removeFromCart", "/users/removeFromCart", userID, product)
}

func (c *Client) mutateCart(ctx context.Context, op, path, userID string, product model.Product) ([]model.CartItem, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	var resp CartResponse
	if err := c.do(ctx, op, http.MethodPost, path, CartMutationRequest{UserID: userID, Cart: product}, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *Client) PlaceOrder(ctx context.Context, userID string, cart []model.CartItem) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	return c.do(ctx, "placeOrder", http.MethodPost, "/users/addToOrders", PlaceOrderRequest{UserID: userID, Cart: cart}, nil)
}

// FetchOrders 依 server 順序回傳 (舊到新)
func (c *Client) FetchOrders(ctx context.Context, userID string) ([]model.OrderItem, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	var resp OrdersResponse
	if err := c.do(ctx, "fetchOrders", http.MethodPost, "/users/myorders", UserIDRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Str("op", op).Msg("request failed")
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg MessageResponse
		// 錯誤回應不一定是 JSON
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
