package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

type fakeSessions struct {
	sessions map[string]identity.Session
}

func (f *fakeSessions) CurrentSession(_ context.Context, token string) (*identity.Session, error) {
	if token == "" {
		return nil, identity.ErrNoSession
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, identity.ErrInvalidSession
	}
	return &s, nil
}

func (f *fakeSessions) OnSessionChange(identity.Listener) func() { return func() {} }

type fakeProfiles map[string]models.Profile

func (f fakeProfiles) GetProfile(_ context.Context, userID string) (models.Profile, error) {
	p, ok := f[userID]
	if !ok {
		return models.Profile{}, errors.New("profile not found")
	}
	return p, nil
}

func TestSessionHandler_ServeHTTP(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]identity.Session{
		"admin-token":  {ID: "j1", UserID: "admin-1", Token: "admin-token"},
		"tenant-token": {ID: "j2", UserID: "user-1", Token: "tenant-token"},
		"orphan-token": {ID: "j3", UserID: "ghost", Token: "orphan-token"},
	}}
	profiles := fakeProfiles{
		"admin-1": {ID: "admin-1", Role: models.RoleAdmin},
		"user-1":  {ID: "user-1", Role: models.RoleUser},
	}
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), sessions, profiles)

	tests := []struct {
		name      string
		token     string
		wantState string
	}{
		{name: "без токена", wantState: "anonymous"},
		{name: "неизвестный токен", token: "bogus", wantState: "anonymous"},
		{name: "администратор", token: "admin-token", wantState: "admin"},
		{name: "арендатор", token: "tenant-token", wantState: "user"},
		{name: "сессия без профиля", token: "orphan-token", wantState: "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			var resp struct {
				Data struct {
					State   string            `json:"state"`
					Session *identity.Session `json:"session"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantState, resp.Data.State)
			if resp.Data.Session != nil {
				assert.Empty(t, resp.Data.Session.Token)
			}
		})
	}
}

// broadcastSessions рассылает вход каждого пользователя всем подписчикам,
// как провайдер идентификации при параллельных логинах.
type broadcastSessions struct {
	sessions map[string]identity.Session

	mu        sync.Mutex
	next      int
	listeners map[int]identity.Listener
}

func (b *broadcastSessions) CurrentSession(_ context.Context, token string) (*identity.Session, error) {
	for _, other := range b.sessions {
		b.emit(identity.Event{Kind: identity.SignedIn, Session: other})
	}
	s, ok := b.sessions[token]
	if !ok {
		return nil, identity.ErrInvalidSession
	}
	return &s, nil
}

func (b *broadcastSessions) OnSessionChange(l identity.Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.listeners[id] = l
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *broadcastSessions) emit(ev identity.Event) {
	b.mu.Lock()
	ls := make([]identity.Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.mu.Unlock()
	for _, l := range ls {
		l(ev)
	}
}

func TestSessionHandler_ConcurrentLogins(t *testing.T) {
	sessions := &broadcastSessions{
		sessions: map[string]identity.Session{
			"admin-token":  {ID: "j1", UserID: "admin-1", Token: "admin-token"},
			"tenant-token": {ID: "j2", UserID: "user-1", Token: "tenant-token"},
		},
		listeners: make(map[int]identity.Listener),
	}
	profiles := fakeProfiles{
		"admin-1": {ID: "admin-1", Role: models.RoleAdmin},
		"user-1":  {ID: "user-1", Phone: "0812-1111", Role: models.RoleUser},
	}
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), sessions, profiles)

	cases := []struct {
		token     string
		wantUser  string
		wantState string
	}{
		{token: "admin-token", wantUser: "admin-1", wantState: "admin"},
		{token: "tenant-token", wantUser: "user-1", wantState: "user"},
		{token: "bogus", wantState: "anonymous"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for _, c := range cases {
			wg.Add(1)
			go func() {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
				req.Header.Set("Authorization", "Bearer "+c.token)
				rr := httptest.NewRecorder()
				h.ServeHTTP(rr, req)

				if !assert.Equal(t, http.StatusOK, rr.Code) {
					return
				}
				var resp struct {
					Data struct {
						State   string            `json:"state"`
						Session *identity.Session `json:"session"`
						Profile *models.Profile   `json:"profile"`
					} `json:"data"`
				}
				if !assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp)) {
					return
				}
				assert.Equal(t, c.wantState, resp.Data.State, c.token)
				if c.wantUser == "" {
					assert.Nil(t, resp.Data.Session, c.token)
					assert.Nil(t, resp.Data.Profile, c.token)
					return
				}
				if assert.NotNil(t, resp.Data.Session, c.token) {
					assert.Equal(t, c.wantUser, resp.Data.Session.UserID)
				}
				if assert.NotNil(t, resp.Data.Profile, c.token) {
					assert.Equal(t, c.wantUser, resp.Data.Profile.ID)
				}
			}()
		}
	}
	wg.Wait()
}
