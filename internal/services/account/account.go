// Package services регистрация, вход и выход арендаторов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/lifecycle"
	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage"
)

var (
	// ErrInvalidSubdomain — после нормализации от поддомена ничего не осталось.
	ErrInvalidSubdomain = errors.New("subdomain must contain a-z, 0-9 or '-'")
	// ErrSubdomainTaken — поддомен занят другим арендатором.
	ErrSubdomainTaken = errors.New("subdomain already taken")
)

// Repository — операции хранилища, нужные при регистрации.
type Repository interface {
	SubdomainExists(ctx context.Context, subdomain string) (bool, error)
	CreateTenant(ctx context.Context, profile models.Profile, sub models.Subscription) error
	DeleteAuthUser(ctx context.Context, id string) error
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
}

// Identity — часть провайдера идентификации, нужная сервису.
type Identity interface {
	SignUp(ctx context.Context, email, password string) (string, error)
	SignInWithPassword(ctx context.Context, email, password string) (identity.Session, error)
	SignOut(ctx context.Context, token string) error
}

// Registration — результат регистрации: профиль и первая заявка.
type Registration struct {
	Profile      models.Profile      `json:"profile"`
	Subscription models.Subscription `json:"subscription"`
}

// AccountService регистрирует арендаторов и управляет сессиями.
type AccountService struct {
	repo  Repository
	ident Identity
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// NewAccountService создает новый экземпляр AccountService.
func NewAccountService(repo Repository, ident Identity, log *slog.Logger) *AccountService {
	return &AccountService{
		repo:  repo,
		ident: ident,
		log:   log,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Register создаёт учётную запись, профиль и заявку на подписку со статусом pending.
// Профиль и заявка пишутся в одной транзакции. Если она не прошла,
// созданная учётная запись удаляется.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (Registration, error) {
	const op = "services.account.Register"
	log := s.log.With(sl.Op(op))

	subdomain := lifecycle.NormalizeSubdomain(req.Subdomain)
	if subdomain == "" {
		return Registration{}, fmt.Errorf("%s: %w", op, ErrInvalidSubdomain)
	}
	plan, err := lifecycle.ParsePlan(req.Plan)
	if err != nil {
		return Registration{}, fmt.Errorf("%s: %w", op, err)
	}
	taken, err := s.repo.SubdomainExists(ctx, subdomain)
	if err != nil {
		return Registration{}, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return Registration{}, fmt.Errorf("%s: %w", op, ErrSubdomainTaken)
	}

	userID, err := s.ident.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return Registration{}, fmt.Errorf("%s: %w", op, err)
	}

	profile := models.Profile{
		ID:          userID,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:    strings.TrimSpace(req.FullName),
		Institution: strings.TrimSpace(req.Institution),
		Subdomain:   subdomain,
		Phone:       strings.TrimSpace(req.Phone),
		Role:        models.RoleUser,
	}
	sub := models.Subscription{
		ID:        s.newID(),
		UserID:    userID,
		PlanName:  plan.Name,
		Price:     plan.Price,
		Status:    models.StatusPending,
		CreatedAt: s.now().UTC(),
	}

	if err = s.repo.CreateTenant(ctx, profile, sub); err != nil {
		if delErr := s.repo.DeleteAuthUser(ctx, userID); delErr != nil {
			log.Error("failed to remove orphan auth user", slog.String("user_id", userID), sl.Err(delErr))
		}
		if errors.Is(err, storage.ErrSubdomainTaken) {
			return Registration{}, fmt.Errorf("%s: %w", op, ErrSubdomainTaken)
		}
		return Registration{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("tenant registered", slog.String("user_id", userID), slog.String("plan", plan.Name))
	return Registration{Profile: profile, Subscription: sub}, nil
}

// Login открывает сессию по email и паролю.
func (s *AccountService) Login(ctx context.Context, email, password string) (identity.Session, error) {
	const op = "services.account.Login"
	session, err := s.ident.SignInWithPassword(ctx, email, password)
	if err != nil {
		return identity.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// Logout отзывает токен.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	const op = "services.account.Logout"
	if err := s.ident.SignOut(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Profile возвращает профиль пользователя.
func (s *AccountService) Profile(ctx context.Context, userID string) (models.Profile, error) {
	const op = "services.account.Profile"
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
