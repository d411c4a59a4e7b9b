package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/cloudslims/internal/directory"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/lifecycle"
	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage"
)

const viewTTL = 24 * time.Hour

// ListRequest — изменения фильтров админ-панели. Nil-поля остаются прежними.
type ListRequest struct {
	Search *string
	Status *string
	Role   *string
	Page   *int
}

// requireAdmin проверяет роль по свежему профилю, а не по токену.
func (s *SubscriptionService) requireAdmin(ctx context.Context, actorID string) error {
	p, err := s.repo.GetProfile(ctx, actorID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if p.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func viewKey(actorID string) string {
	return "directory:view:" + actorID
}

// AdminList возвращает страницу каталога арендаторов. Фильтры администратора
// сохраняются между запросами; смена любого фильтра возвращает на первую страницу.
func (s *SubscriptionService) AdminList(ctx context.Context, actorID string, req ListRequest) (directory.Page, error) {
	const op = "services.subscription.AdminList"
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return directory.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	view := directory.NewView()
	key := viewKey(actorID)
	if _, err := s.cache.Get(ctx, key, &view); err != nil {
		s.log.Warn("failed to read cache", slog.String("key", key), sl.Err(err))
	}
	if req.Search != nil {
		view.SetSearch(*req.Search)
	}
	if req.Status != nil {
		view.SetStatus(*req.Status)
	}
	if req.Role != nil {
		view.SetRole(*req.Role)
	}
	if req.Page != nil {
		view.SetPage(*req.Page)
	}

	rows, err := s.repo.ListTenantRows(ctx)
	if err != nil {
		return directory.Page{}, fmt.Errorf("%s: %w", op, err)
	}
	page := view.Apply(rows)
	view.SetPage(page.Page)

	if err := s.cache.Set(ctx, key, view, viewTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return page, nil
}

// Stats возвращает сводку по всем записям.
func (s *SubscriptionService) Stats(ctx context.Context, actorID string) (models.Stats, error) {
	const op = "services.subscription.Stats"
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.repo.ListTenantRows(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return directory.Stats(rows), nil
}

// History возвращает все записи арендатора, новые первыми.
func (s *SubscriptionService) History(ctx context.Context, actorID, userID string) ([]models.TenantRow, error) {
	const op = "services.subscription.History"
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.repo.ListTenantRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return directory.History(rows, userID), nil
}

// Activate подтверждает оплату. Без validUntil срок — год от момента активации.
func (s *SubscriptionService) Activate(ctx context.Context, actorID, id string, validUntil *time.Time) (models.TenantRow, error) {
	const op = "services.subscription.Activate"
	return s.transition(ctx, op, actorID, id, models.NotificationActivated, func(sub models.Subscription) (models.Subscription, error) {
		return lifecycle.Activate(sub, s.now().UTC(), validUntil)
	})
}

// Reject отклоняет оплату.
func (s *SubscriptionService) Reject(ctx context.Context, actorID, id string) (models.TenantRow, error) {
	const op = "services.subscription.Reject"
	return s.transition(ctx, op, actorID, id, models.NotificationRejected, lifecycle.Reject)
}

func (s *SubscriptionService) transition(
	ctx context.Context,
	op, actorID, id string,
	kind models.NotificationKind,
	apply func(models.Subscription) (models.Subscription, error),
) (models.TenantRow, error) {
	log := s.log.With(sl.Op(op), slog.String("subscription_id", id), slog.String("actor_id", actorID))
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, err)
	}

	row, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := apply(row.Subscription)
	if err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.UpdateSubscription(ctx, updated); err != nil {
		log.Error("failed to persist transition", sl.Err(err))
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, err)
	}
	s.recordTransition(row.Status, updated.Status)
	s.invalidate(ctx, row.UserID)
	log.Info("subscription status changed",
		slog.String("from", string(row.Status)),
		slog.String("to", string(updated.Status)))

	fresh, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: reread: %w", op, err)
	}
	s.notify(kind, fresh.Subscription, fresh.Profile)
	return directory.WithTransitions(fresh), nil
}

// Edit применяет правки администратора к записи и профилю в одной транзакции.
func (s *SubscriptionService) Edit(ctx context.Context, actorID, id string, edit models.AdminEdit) (models.TenantRow, error) {
	const op = "services.subscription.Edit"
	log := s.log.With(sl.Op(op), slog.String("subscription_id", id), slog.String("actor_id", actorID))
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, err)
	}

	row, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, err)
	}
	if row.Profile == nil {
		return models.TenantRow{}, fmt.Errorf("%s: profile: %w", op, storage.ErrNotFound)
	}

	sub, profile, err := lifecycle.ApplyAdminEdit(row.Subscription, *row.Profile, edit, s.now().UTC())
	if err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.UpdateTenant(ctx, profile, sub); err != nil {
		log.Error("failed to persist edit", sl.Err(err))
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, err)
	}
	s.recordTransition(row.Status, sub.Status)
	s.invalidate(ctx, row.UserID)
	log.Info("subscription edited")

	fresh, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: reread: %w", op, err)
	}
	if row.Status != fresh.Status {
		switch fresh.Status {
		case models.StatusActive:
			s.notify(models.NotificationActivated, fresh.Subscription, fresh.Profile)
		case models.StatusRejected:
			s.notify(models.NotificationRejected, fresh.Subscription, fresh.Profile)
		}
	}
	return directory.WithTransitions(fresh), nil
}

// Delete удаляет запись подписки. Профиль и остальная история не затрагиваются.
func (s *SubscriptionService) Delete(ctx context.Context, actorID, id string) error {
	const op = "services.subscription.Delete"
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	row, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.DeleteSubscription(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, row.UserID)
	s.log.Info("subscription deleted", slog.String("subscription_id", id), slog.String("actor_id", actorID))
	return nil
}
