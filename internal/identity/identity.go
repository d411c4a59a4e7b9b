// Package identity — провайдер идентификации: регистрация, вход по паролю,
// сессии на JWT, выход с отзывом токена и уведомления о смене сессии.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoSession — токен не передан.
	ErrNoSession = errors.New("no session")
	// ErrInvalidSession — токен битый, просрочен или отозван.
	ErrInvalidSession = errors.New("invalid session")
	// ErrInvalidCredentials — неверный email или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
)

// Session — подтверждённая сессия пользователя.
type Session struct {
	ID        string    `json:"id"` // jti токена
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EventKind — вид уведомления о смене сессии.
type EventKind int

const (
	SignedIn EventKind = iota + 1
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

// Event — уведомление о смене сессии.
type Event struct {
	Kind    EventKind
	Session Session
}

// Listener получает уведомления о смене сессии.
type Listener func(Event)

// Provider — контракт провайдера идентификации.
type Provider interface {
	// CurrentSession проверяет токен и возвращает сессию.
	CurrentSession(ctx context.Context, token string) (*Session, error)
	// OnSessionChange подписывает l на уведомления, возвращает функцию отписки.
	OnSessionChange(l Listener) (unsubscribe func())
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (userID string, err error)
	SignOut(ctx context.Context, token string) error
}
