// Package session решает, какой экран показать: загрузку, лендинг,
// кабинет администратора или кабинет арендатора.
//
// Роль всегда берётся из свежего профиля. Без подтверждённого профиля
// роутер не выдаёт привилегированных экранов, даже если сессия есть.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// State — экран, который следует показать.
type State string

const (
	StateLoading   State = "loading"
	StateAnonymous State = "anonymous"
	StateAdmin     State = "admin"
	StateUser      State = "user"
)

// ErrAlreadyStarted возвращается при повторном вызове Start.
var ErrAlreadyStarted = errors.New("session router already started")

// SessionSource — часть провайдера идентификации, нужная роутеру.
type SessionSource interface {
	CurrentSession(ctx context.Context, token string) (*identity.Session, error)
	OnSessionChange(l identity.Listener) (unsubscribe func())
}

// ProfileFetcher читает профиль пользователя.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
}

// Snapshot — состояние роутера на момент вызова.
type Snapshot struct {
	State   State             `json:"state"`
	Session *identity.Session `json:"session,omitempty"`
	Profile *models.Profile   `json:"profile,omitempty"`
	// ProfileErr заполняется, если сессия есть, а профиль получить не удалось.
	ProfileErr error `json:"-"`
}

// Router — конечный автомат выбора экрана.
type Router struct {
	sessions SessionSource
	profiles ProfileFetcher

	mu      sync.Mutex
	started bool
	epoch   uint64
	owner   string
	snap    Snapshot
}

// NewRouter создаёт роутер в состоянии loading.
func NewRouter(sessions SessionSource, profiles ProfileFetcher) *Router {
	return &Router{
		sessions: sessions,
		profiles: profiles,
		snap:     Snapshot{State: StateLoading},
	}
}

// Snapshot возвращает копию текущего состояния.
func (r *Router) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// State возвращает текущий экран.
func (r *Router) State() State {
	return r.Snapshot().State
}

// Start выполняет первичную проверку сессии. Вызывается один раз.
// Возвращённый снимок всегда относится к пользователю token.
func (r *Router) Start(ctx context.Context, token string) (Snapshot, error) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return r.Snapshot(), ErrAlreadyStarted
	}
	r.started = true
	epoch := r.epoch
	r.mu.Unlock()

	s, err := r.sessions.CurrentSession(ctx, token)
	if err != nil || s == nil {
		r.mu.Lock()
		if r.epoch == epoch {
			r.epoch++
			r.snap = Snapshot{State: StateAnonymous}
		}
		snap := r.snap
		r.mu.Unlock()
		if snap.Session != nil {
			return Snapshot{State: StateAnonymous}, nil
		}
		return snap, nil
	}

	r.mu.Lock()
	r.owner = s.UserID
	r.mu.Unlock()

	own, current := r.resolve(ctx, *s, epoch)
	if current.Session != nil && current.Session.UserID != s.UserID {
		return own, nil
	}
	return current, nil
}

// HandleEvent обрабатывает уведомление провайдера идентификации.
func (r *Router) HandleEvent(ctx context.Context, ev identity.Event) Snapshot {
	switch ev.Kind {
	case identity.SignedOut:
		r.mu.Lock()
		r.started = true
		r.epoch++
		r.snap = Snapshot{State: StateAnonymous}
		snap := r.snap
		r.mu.Unlock()
		return snap
	case identity.SignedIn:
		r.mu.Lock()
		r.started = true
		r.epoch++
		epoch := r.epoch
		r.owner = ev.Session.UserID
		s := ev.Session
		r.snap = Snapshot{State: StateLoading, Session: &s}
		r.mu.Unlock()
		_, current := r.resolve(ctx, ev.Session, epoch)
		return current
	}
	return r.Snapshot()
}

// Subscribe подписывает роутер на уведомления источника.
// Учитываются только события пользователя, чья сессия определена в Start
// или в HandleEvent; до этого все события отбрасываются.
func (r *Router) Subscribe(ctx context.Context, src SessionSource) (unsubscribe func()) {
	return src.OnSessionChange(func(ev identity.Event) {
		r.mu.Lock()
		owner := r.owner
		r.mu.Unlock()
		if owner == "" || owner != ev.Session.UserID {
			return
		}
		r.HandleEvent(ctx, ev)
	})
}

// resolve загружает профиль и выбирает экран. Возвращает снимок для s и
// текущее состояние роутера. Если за время загрузки пришло другое событие,
// снимок для s не сохраняется.
func (r *Router) resolve(ctx context.Context, s identity.Session, epoch uint64) (own, current Snapshot) {
	profile, err := r.profiles.GetProfile(ctx, s.UserID)

	next := Snapshot{State: StateAnonymous, Session: &s}
	switch {
	case err != nil:
		next.ProfileErr = err
	case profile.Role == models.RoleAdmin:
		next.State = StateAdmin
		next.Profile = &profile
	case profile.Role == models.RoleUser:
		next.State = StateUser
		next.Profile = &profile
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != epoch {
		return next, r.snap
	}
	r.epoch++
	r.owner = s.UserID
	r.snap = next
	return next, next
}
