package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyUserID = errors.New("user id is empty")
	ErrEmptyID     = errors.New("product id is empty")
)

// StatusError server 回應非 2xx
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api %s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("api %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
}

type LoginOutcome int

const (
	LoginOK LoginOutcome = iota
	LoginNotRegistered
	LoginWrongCredentials
)

func (o LoginOutcome) String() string {
	switch o {
	case LoginOK:
		return "logged_in"
	case LoginNotRegistered:
		return "not_registered"
	default:
		return "wrong_credentials"
	}
}

// ClassifyLoginMessage 依 server 訊息內容判斷登入結果
func ClassifyLoginMessage(message string) LoginOutcome {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "not registered"):
		return LoginNotRegistered
	case strings.Contains(m, "logged in"):
		return LoginOK
	default:
		return LoginWrongCredentials
	}
}

// AuthError 登入/註冊失敗，Message 直接給使用者看
type AuthError struct {
	Outcome LoginOutcome
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func IsNotRegistered(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Outcome == LoginNotRegistered
}
