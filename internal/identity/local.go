package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/cloudslims/internal/lib/jwt"
	"github.com/magabrotheeeer/cloudslims/internal/lib/password"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage"
)

// UserStore хранит учётные записи. Отсутствие записи — storage.ErrNotFound,
// занятый email — storage.ErrEmailTaken.
type UserStore interface {
	CreateAuthUser(ctx context.Context, email, passwordHash string) (string, error)
	GetAuthUserByEmail(ctx context.Context, email string) (models.AuthUser, error)
}

// RevocationList хранит отозванные jti.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Local — провайдер поверх собственной таблицы учётных записей.
type Local struct {
	log     *slog.Logger
	users   UserStore
	revoked RevocationList
	tokens  jwt.Maker
	now     func() time.Time

	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

// NewLocal создаёт провайдер.
func NewLocal(log *slog.Logger, users UserStore, revoked RevocationList, tokens jwt.Maker) *Local {
	return &Local{
		log:       log,
		users:     users,
		revoked:   revoked,
		tokens:    tokens,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp создаёт учётную запись. Сессия при этом не открывается.
func (p *Local) SignUp(ctx context.Context, email, pw string) (string, error) {
	const op = "identity.SignUp"
	hash, err := password.GetHash(pw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := p.users.CreateAuthUser(ctx, normalizeEmail(email), hash)
	if errors.Is(err, storage.ErrEmailTaken) {
		return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// SignInWithPassword проверяет пароль и открывает сессию.
func (p *Local) SignInWithPassword(ctx context.Context, email, pw string) (Session, error) {
	const op = "identity.SignInWithPassword"
	user, err := p.users.GetAuthUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, pw); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	token, claims, err := p.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	s := sessionFromClaims(claims, token)
	p.emit(Event{Kind: SignedIn, Session: s})
	return s, nil
}

// CurrentSession возвращает сессию по токену.
// Пустой токен даёт ErrNoSession, битый, просроченный или отозванный — ErrInvalidSession.
func (p *Local) CurrentSession(ctx context.Context, token string) (*Session, error) {
	const op = "identity.CurrentSession"
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := p.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidSession, err)
	}
	revoked, err := p.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSession)
	}
	s := sessionFromClaims(claims, token)
	return &s, nil
}

// SignOut отзывает токен до конца его срока и уведомляет подписчиков.
func (p *Local) SignOut(ctx context.Context, token string) error {
	const op = "identity.SignOut"
	s, err := p.CurrentSession(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = p.revoked.Revoke(ctx, s.ID, s.ExpiresAt.Sub(p.now())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.emit(Event{Kind: SignedOut, Session: *s})
	return nil
}

// OnSessionChange подписывает l на уведомления.
func (p *Local) OnSessionChange(l Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Local) emit(ev Event) {
	p.mu.RLock()
	ls := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		ls = append(ls, l)
	}
	p.mu.RUnlock()

	for _, l := range ls {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.log.Error("session listener panicked", slog.String("event", ev.Kind.String()), sl.Err(fmt.Errorf("%v", r)))
				}
			}()
			l(ev)
		}()
	}
}

func sessionFromClaims(c *jwt.Claims, token string) Session {
	s := Session{
		ID:     c.ID,
		UserID: c.UserID(),
		Email:  c.Email,
		Token:  token,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
