package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage"
)

const subscriptionColumns = `s.id, s.user_id, s.plan_name, s.price, s.status, s.payment_proof_url, s.valid_until, s.created_at`

const tenantRowColumns = subscriptionColumns + `,
	p.id, p.email, p.full_name, p.institution, p.subdomain, p.phone, p.role`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanName, &sub.Price, &sub.Status,
		&sub.PaymentProofURL, &sub.ValidUntil, &sub.CreatedAt)
	return sub, err
}

func scanTenantRow(row scanner) (models.TenantRow, error) {
	var r models.TenantRow
	var p models.Profile
	err := row.Scan(&r.ID, &r.UserID, &r.PlanName, &r.Price, &r.Status,
		&r.PaymentProofURL, &r.ValidUntil, &r.CreatedAt,
		&p.ID, &p.Email, &p.FullName, &p.Institution, &p.Subdomain, &p.Phone, &p.Role)
	if err != nil {
		return r, err
	}
	r.Profile = &p
	return r, nil
}

func insertSubscription(ctx context.Context, q interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, sub models.Subscription) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, plan_name, price, status, payment_proof_url, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.UserID, sub.PlanName, sub.Price, sub.Status, sub.PaymentProofURL, sub.ValidUntil, sub.CreatedAt)
	return err
}

func updateSubscription(ctx context.Context, q interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, sub models.Subscription) error {
	res, err := q.ExecContext(ctx, `
		UPDATE subscriptions
		SET plan_name = $2, price = $3, status = $4, payment_proof_url = $5, valid_until = $6
		WHERE id = $1`,
		sub.ID, sub.PlanName, sub.Price, sub.Status, sub.PaymentProofURL, sub.ValidUntil)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateTenant в одной транзакции создаёт профиль и первую подписку.
func (s *Storage) CreateTenant(ctx context.Context, profile models.Profile, sub models.Subscription) error {
	const op = "storage.CreateTenant"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (id, email, full_name, institution, subdomain, phone, role)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			profile.ID, profile.Email, profile.FullName, profile.Institution, profile.Subdomain, profile.Phone, profile.Role)
		if err != nil {
			return err
		}
		return insertSubscription(ctx, tx, sub)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return nil
}

// InsertSubscription добавляет запись подписки (заявку на продление).
func (s *Storage) InsertSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.InsertSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	if err := insertSubscription(ctx, s.DB, sub); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return nil
}

// UpdateSubscription сохраняет изменяемые поля подписки.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	if err := updateSubscription(ctx, s.DB, sub); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return nil
}

// UpdateTenant в одной транзакции сохраняет профиль и подписку.
// Если одна из записей не обновилась, не меняется ни одна.
func (s *Storage) UpdateTenant(ctx context.Context, profile models.Profile, sub models.Subscription) error {
	const op = "storage.UpdateTenant"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE profiles SET full_name = $2, institution = $3, subdomain = $4, phone = $5
			WHERE id = $1`,
			profile.ID, profile.FullName, profile.Institution, profile.Subdomain, profile.Phone)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return storage.ErrNotFound
		}
		return updateSubscription(ctx, tx, sub)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return nil
}

// DeleteSubscription удаляет запись подписки.
func (s *Storage) DeleteSubscription(ctx context.Context, id string) error {
	const op = "storage.DeleteSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// GetSubscription возвращает подписку с профилем владельца.
func (s *Storage) GetSubscription(ctx context.Context, id string) (models.TenantRow, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return models.TenantRow{}, err
	}
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+tenantRowColumns+`
		FROM subscriptions s JOIN profiles p ON p.id = s.user_id
		WHERE s.id = $1`, id)
	r, err := scanTenantRow(row)
	if err != nil {
		return models.TenantRow{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return r, nil
}

// CurrentSubscription возвращает самую позднюю запись пользователя.
func (s *Storage) CurrentSubscription(ctx context.Context, userID string) (models.Subscription, error) {
	const op = "storage.CurrentSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return models.Subscription{}, err
	}
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions s
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, s.id
		LIMIT 1`, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return sub, nil
}

// ListTenantRows возвращает все подписки с профилями, новые первыми.
func (s *Storage) ListTenantRows(ctx context.Context) ([]models.TenantRow, error) {
	const op = "storage.ListTenantRows"
	return s.queryTenantRows(ctx, op, `
		SELECT `+tenantRowColumns+`
		FROM subscriptions s JOIN profiles p ON p.id = s.user_id
		ORDER BY s.created_at DESC, s.id`)
}

// ListCurrentActive возвращает текущие записи арендаторов, если они в статусе active.
func (s *Storage) ListCurrentActive(ctx context.Context) ([]models.TenantRow, error) {
	const op = "storage.ListCurrentActive"
	return s.queryTenantRows(ctx, op, `
		WITH cur AS (
			SELECT DISTINCT ON (user_id) id, status, valid_until
			FROM subscriptions
			ORDER BY user_id, created_at DESC, id
		)
		SELECT `+tenantRowColumns+`
		FROM cur
		JOIN subscriptions s ON s.id = cur.id
		JOIN profiles p ON p.id = s.user_id
		WHERE cur.status = 'active' AND cur.valid_until IS NOT NULL
		ORDER BY s.valid_until`)
}

func (s *Storage) queryTenantRows(ctx context.Context, op, query string, args ...any) ([]models.TenantRow, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.TenantRow, 0)
	for rows.Next() {
		r, err := scanTenantRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
