package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// CreateAuthUser создаёт учётную запись и возвращает её идентификатор.
func (s *Storage) CreateAuthUser(ctx context.Context, email, passwordHash string) (string, error) {
	const op = "storage.CreateAuthUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}
	var id string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO auth_users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, passwordHash).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return id, nil
}

// GetAuthUserByEmail ищет учётную запись по email.
func (s *Storage) GetAuthUserByEmail(ctx context.Context, email string) (models.AuthUser, error) {
	const op = "storage.GetAuthUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return models.AuthUser{}, err
	}
	var u models.AuthUser
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM auth_users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		return models.AuthUser{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return u, nil
}

// DeleteAuthUser удаляет учётную запись вместе с профилем и подписками.
func (s *Storage) DeleteAuthUser(ctx context.Context, id string) error {
	const op = "storage.DeleteAuthUser"
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM auth_users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetProfile возвращает профиль по идентификатору пользователя.
func (s *Storage) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	const op = "storage.GetProfile"
	if err := checkCtx(ctx, op); err != nil {
		return models.Profile{}, err
	}
	var p models.Profile
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, email, full_name, institution, subdomain, phone, role FROM profiles WHERE id = $1`, userID).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Institution, &p.Subdomain, &p.Phone, &p.Role)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return p, nil
}

// SubdomainExists проверяет, занят ли поддомен.
func (s *Storage) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	const op = "storage.SubdomainExists"
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE subdomain = $1)`, subdomain).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// PromoteAdmins выдаёт роль admin профилям с указанными email.
func (s *Storage) PromoteAdmins(ctx context.Context, emails []string) (int, error) {
	const op = "storage.PromoteAdmins"
	if len(emails) == 0 {
		return 0, nil
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE profiles SET role = 'admin' WHERE email = ANY($1) AND role <> 'admin'`, emails)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
