// Package services бизнес-логика подписок: кабинет арендатора и админ-панель.
// Каждое изменение сначала сохраняется, затем запись перечитывается из хранилища.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/cloudslims/internal/invoice"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/lifecycle"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

const currentTTL = time.Hour

// ErrForbidden — операция доступна только администратору.
var ErrForbidden = errors.New("admin role required")

// SubscriptionRepository определяет методы хранилища подписок и профилей.
type SubscriptionRepository interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	CurrentSubscription(ctx context.Context, userID string) (models.Subscription, error)
	GetSubscription(ctx context.Context, id string) (models.TenantRow, error)
	InsertSubscription(ctx context.Context, sub models.Subscription) error
	UpdateSubscription(ctx context.Context, sub models.Subscription) error
	UpdateTenant(ctx context.Context, profile models.Profile, sub models.Subscription) error
	DeleteSubscription(ctx context.Context, id string) error
	ListTenantRows(ctx context.Context) ([]models.TenantRow, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// ProofStore сохраняет изображение подтверждения оплаты и возвращает публичный URL.
type ProofStore interface {
	UploadProof(ctx context.Context, userID string, data []byte) (string, error)
}

// Notifier публикует уведомления для sender.
type Notifier interface {
	Notify(n models.Notification) error
}

// Recorder — счётчики Prometheus.
type Recorder interface {
	Transition(from, to string)
	ProofUpload(err error)
	Notification(kind string, err error)
}

type noopRecorder struct{}

func (noopRecorder) Transition(string, string) {}
func (noopRecorder) ProofUpload(error) {}
func (noopRecorder) Notification(string, error) {}

// SubscriptionService реализует операции над подписками.
type SubscriptionService struct {
	repo      SubscriptionRepository
	cache     Cache
	proofs    ProofStore
	notifier  Notifier
	metrics   Recorder
	catalogue invoice.Catalogue
	log       *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// notifier может быть nil: тогда уведомления не отправляются.
func NewSubscriptionService(
	repo SubscriptionRepository,
	cache Cache,
	proofs ProofStore,
	notifier Notifier,
	metrics Recorder,
	catalogue invoice.Catalogue,
	log *slog.Logger,
) *SubscriptionService {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &SubscriptionService{
		repo:      repo,
		cache:     cache,
		proofs:    proofs,
		notifier:  notifier,
		metrics:   metrics,
		catalogue: catalogue,
		log:       log,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

func currentKey(userID string) string {
	return "subscription:current:" + userID
}

// Current возвращает текущую подписку пользователя с признаками истечения,
// вычисленными на момент вызова. В кеше хранится только сама запись.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (models.SubscriptionView, error) {
	sub, err := s.currentRecord(ctx, userID)
	if err != nil {
		return models.SubscriptionView{}, err
	}
	return lifecycle.View(sub, s.now()), nil
}

func (s *SubscriptionService) currentRecord(ctx context.Context, userID string) (models.Subscription, error) {
	const op = "services.subscription.currentRecord"
	key := currentKey(userID)

	var cached models.Subscription
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	sub, err := s.repo.CurrentSubscription(ctx, userID)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, key, sub, currentTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return sub, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, userID string) {
	key := currentKey(userID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
}

// UploadProof загружает подтверждение оплаты, прикрепляет его URL к текущей
// записи и возвращает запись в статус pending.
func (s *SubscriptionService) UploadProof(ctx context.Context, userID string, data []byte) (models.SubscriptionView, error) {
	const op = "services.subscription.UploadProof"
	log := s.log.With(sl.Op(op), slog.String("user_id", userID))

	current, err := s.repo.CurrentSubscription(ctx, userID)
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.proofs.UploadProof(ctx, userID, data)
	s.metrics.ProofUpload(err)
	if err != nil {
		log.Error("failed to upload proof", sl.Err(err))
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := lifecycle.AttachProof(current, url)
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.UpdateSubscription(ctx, updated); err != nil {
		log.Error("failed to persist proof url", sl.Err(err))
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	s.recordTransition(current.Status, updated.Status)
	s.invalidate(ctx, userID)
	log.Info("payment proof attached", slog.String("subscription_id", updated.ID))

	return s.Current(ctx, userID)
}

// RequestRenewal добавляет новую запись pending с планом и ценой текущей.
// Прежняя запись остаётся в истории без изменений.
func (s *SubscriptionService) RequestRenewal(ctx context.Context, userID string) (models.SubscriptionView, error) {
	const op = "services.subscription.RequestRenewal"

	current, err := s.repo.CurrentSubscription(ctx, userID)
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	renewal := lifecycle.RequestRenewal(current, s.newID(), s.now().UTC())
	if err = s.repo.InsertSubscription(ctx, renewal); err != nil {
		return models.SubscriptionView{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, userID)
	s.log.Info("renewal requested",
		slog.String("user_id", userID),
		slog.String("previous_id", current.ID),
		slog.String("subscription_id", renewal.ID))

	return s.Current(ctx, userID)
}

func (s *SubscriptionService) recordTransition(from, to models.Status) {
	if from != to {
		s.metrics.Transition(string(from), string(to))
	}
}

func (s *SubscriptionService) notify(kind models.NotificationKind, sub models.Subscription, p *models.Profile) {
	if s.notifier == nil || p == nil {
		return
	}
	err := s.notifier.Notify(models.NewNotification(kind, sub, *p))
	s.metrics.Notification(string(kind), err)
	if err != nil {
		s.log.Error("failed to publish notification",
			slog.String("kind", string(kind)),
			slog.String("subscription_id", sub.ID),
			sl.Err(err))
	}
}
