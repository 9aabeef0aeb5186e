package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/api"
	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/rs/zerolog"
)

type IAuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (string, error)
	Logout()
}

type AuthService struct {
	store  *store.Store
	client AuthAPI
	logger *zerolog.Logger
}

var _ IAuthService = (*AuthService)(nil)

func NewAuthService(s *store.Store, client AuthAPI, logger *zerolog.Logger) *AuthService {
	if s == nil {
		panic("authService dependency store is nil")
	}
	if client == nil {
		panic("authService dependency client is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &AuthService{store: s, client: client, logger: logger}
}

// Login 回傳 server 訊息，失敗為 *api.AuthError，呼叫端依 Outcome 決定下一步
func (a *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	return a.signIn(ctx, a.client.Login, username, password)
}

func (a *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	return a.signIn(ctx, a.client.Register, username, password)
}

func (a *AuthService) signIn(ctx context.Context, call func(context.Context, string, string) (api.LoginResponse, error), username, password string) (string, error) {
	resp, err := call(ctx, username, password)
	if err != nil {
		a.logger.Warn().Err(err).Str("username", username).Msg("sign in failed")
		return "", err
	}
	a.store.SetUser(resp.User)
	return resp.Message, nil
}

func (a *AuthService) Logout() {
	a.store.SetUser(model.EmptyUser())
}
