// Package services периодически ищет активные подписки, срок которых подходит
// к концу, и публикует напоминания. Статус в хранилище не меняется:
// истечение всегда вычисляется по valid_until на момент проверки.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/lifecycle"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

const sentTTL = 24 * time.Hour

type SubscriptionRepository interface {
	ListCurrentActive(ctx context.Context) ([]models.TenantRow, error)
}

// Notifier публикует уведомление в брокер.
type Notifier interface {
	Notify(n models.Notification) error
}

// SentLog помнит уже отправленные напоминания, чтобы не слать их при каждом проходе.
type SentLog interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Recorder — счётчик опубликованных уведомлений.
type Recorder interface {
	Notification(kind string, err error)
}

type SchedulerService struct {
	repo     SubscriptionRepository
	notifier Notifier
	sent     SentLog
	metrics  Recorder
	log      *slog.Logger
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, notifier Notifier, sent SentLog, metrics Recorder, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		notifier: notifier,
		sent:     sent,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// Run выполняет проверку сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context, interval time.Duration) {
	s.runOnceLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runOnceLogged(ctx)
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		}
	}
}

func (s *SchedulerService) runOnceLogged(ctx context.Context) {
	n, err := s.RemindExpiring(ctx)
	if err != nil {
		s.log.Error("failed to scan expiring subscriptions", sl.Err(err))
		return
	}
	s.log.Info("expiry scan finished", slog.Int("published", n))
}

func sentKey(subscriptionID string, day time.Time) string {
	return "reminder:sent:" + subscriptionID + ":" + day.UTC().Format(time.DateOnly)
}

// RemindExpiring публикует напоминание по каждой текущей активной записи,
// у которой осталось не больше 30 дней (включая уже истёкшие).
// Возвращает число опубликованных сообщений.
func (s *SchedulerService) RemindExpiring(ctx context.Context) (int, error) {
	const op = "services.scheduler.RemindExpiring"
	rows, err := s.repo.ListCurrentActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	published := 0
	for _, row := range rows {
		if !lifecycle.IsExpiringSoon(row.Subscription, now) || row.Profile == nil {
			continue
		}
		key := sentKey(row.ID, now)
		if s.alreadySent(ctx, key) {
			continue
		}

		n := models.NewNotification(models.NotificationExpiring, row.Subscription, *row.Profile)
		n.DaysRemaining = lifecycle.DaysRemaining(*row.ValidUntil, now)
		err := s.notifier.Notify(n)
		if s.metrics != nil {
			s.metrics.Notification(string(n.Kind), err)
		}
		if err != nil {
			s.log.Error("failed to publish message", slog.String("subscription_id", row.ID), sl.Err(err))
			continue
		}
		published++
		if err := s.sent.Set(ctx, key, true, sentTTL); err != nil {
			s.log.Warn("failed to remember reminder", slog.String("key", key), sl.Err(err))
		}
	}
	return published, nil
}

func (s *SchedulerService) alreadySent(ctx context.Context, key string) bool {
	var sent bool
	found, err := s.sent.Get(ctx, key, &sent)
	if err != nil {
		s.log.Warn("failed to read reminder log", slog.String("key", key), sl.Err(err))
		return false
	}
	return found && sent
}
