package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/cloudslims/internal/migrations"
	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage"
)

func setupTestDB(t *testing.T) *Storage {
	if testing.Short() {
		t.Skip("integration test: needs docker")
	}
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, filepath.Join(root, "migrations")))
	require.NoError(t, s.CheckDatabaseReady(ctx))
	return s
}

type fixture struct {
	profile models.Profile
	sub     models.Subscription
}

func createTenant(t *testing.T, s *Storage, email, subdomain string, createdAt time.Time) fixture {
	ctx := context.Background()
	id, err := s.CreateAuthUser(ctx, email, "hash")
	require.NoError(t, err)

	f := fixture{
		profile: models.Profile{ID: id, Email: email, FullName: "Siti", Institution: "SMA 1", Subdomain: subdomain, Phone: "0812", Role: models.RoleUser},
		sub: models.Subscription{
			ID: uuid.NewString(), UserID: id, PlanName: "Pro", Price: 350000,
			Status: models.StatusPending, CreatedAt: createdAt,
		},
	}
	require.NoError(t, s.CreateTenant(ctx, f.profile, f.sub))
	return f
}

func TestStorage_AuthUsers(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	id, err := s.CreateAuthUser(ctx, "a@perpus.id", "hash")
	require.NoError(t, err)

	u, err := s.GetAuthUserByEmail(ctx, "a@perpus.id")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = s.CreateAuthUser(ctx, "a@perpus.id", "hash")
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	_, err = s.GetAuthUserByEmail(ctx, "none@perpus.id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_CreateTenantAndCurrent(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	f := createTenant(t, s, "a@perpus.id", "perpus-a", t0)

	p, err := s.GetProfile(ctx, f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, f.profile, p)

	cur, err := s.CurrentSubscription(ctx, f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, f.sub.ID, cur.ID)
	assert.Equal(t, models.StatusPending, cur.Status)
	assert.Nil(t, cur.ValidUntil)
	assert.Nil(t, cur.PaymentProofURL)

	renewal := f.sub
	renewal.ID = uuid.NewString()
	renewal.CreatedAt = t0.Add(time.Hour)
	require.NoError(t, s.InsertSubscription(ctx, renewal))

	cur, err = s.CurrentSubscription(ctx, f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, renewal.ID, cur.ID)

	rows, err := s.ListTenantRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, renewal.ID, rows[0].ID)
	assert.Equal(t, "perpus-a", rows[0].Profile.Subdomain)
}

func TestStorage_SubdomainTakenRollsBack(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	createTenant(t, s, "a@perpus.id", "perpus", time.Now())

	id, err := s.CreateAuthUser(ctx, "b@perpus.id", "hash")
	require.NoError(t, err)
	err = s.CreateTenant(ctx,
		models.Profile{ID: id, Email: "b@perpus.id", Subdomain: "perpus", Role: models.RoleUser},
		models.Subscription{ID: uuid.NewString(), UserID: id, PlanName: "Starter", Price: 150000, Status: models.StatusPending, CreatedAt: time.Now()},
	)
	assert.ErrorIs(t, err, storage.ErrSubdomainTaken)

	_, err = s.CurrentSubscription(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	exists, err := s.SubdomainExists(ctx, "perpus")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStorage_UpdateTenantIsAtomic(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	a := createTenant(t, s, "a@perpus.id", "perpus-a", time.Now())
	createTenant(t, s, "b@perpus.id", "perpus-b", time.Now())

	profile := a.profile
	profile.Institution = "Perpustakaan Baru"
	sub := a.sub
	sub.ID = uuid.NewString()
	err := s.UpdateTenant(ctx, profile, sub)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := s.GetProfile(ctx, a.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "SMA 1", got.Institution)

	profile.Subdomain = "perpus-b"
	err = s.UpdateTenant(ctx, profile, a.sub)
	assert.ErrorIs(t, err, storage.ErrSubdomainTaken)

	profile.Subdomain = "perpus-a"
	until := time.Now().AddDate(1, 0, 0).UTC().Truncate(time.Microsecond)
	sub = a.sub
	sub.Status = models.StatusActive
	sub.ValidUntil = &until
	require.NoError(t, s.UpdateTenant(ctx, profile, sub))

	row, err := s.GetSubscription(ctx, a.sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, row.Status)
	assert.True(t, until.Equal(*row.ValidUntil))
	assert.Equal(t, "Perpustakaan Baru", row.Profile.Institution)
}

func TestStorage_ListCurrentActiveAndDelete(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	t0 := time.Now().Add(-time.Hour)
	a := createTenant(t, s, "a@perpus.id", "perpus-a", t0)
	b := createTenant(t, s, "b@perpus.id", "perpus-b", t0)

	until := time.Now().AddDate(0, 0, 10)
	activeA := a.sub
	activeA.Status = models.StatusActive
	activeA.ValidUntil = &until
	require.NoError(t, s.UpdateSubscription(ctx, activeA))

	activeB := b.sub
	activeB.Status = models.StatusActive
	activeB.ValidUntil = &until
	require.NoError(t, s.UpdateSubscription(ctx, activeB))
	renewalB := b.sub
	renewalB.ID = uuid.NewString()
	renewalB.CreatedAt = t0.Add(time.Minute)
	require.NoError(t, s.InsertSubscription(ctx, renewalB))

	rows, err := s.ListCurrentActive(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.sub.ID, rows[0].ID)
	assert.Equal(t, "a@perpus.id", rows[0].Profile.Email)

	all, err := s.ListTenantRows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.DeleteSubscription(ctx, renewalB.ID))
	assert.ErrorIs(t, s.DeleteSubscription(ctx, renewalB.ID), storage.ErrNotFound)

	_, err = s.GetSubscription(ctx, renewalB.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_PromoteAdmins(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	a := createTenant(t, s, "admin@eslims.my.id", "admin", time.Now())

	n, err := s.PromoteAdmins(ctx, []string{"admin@eslims.my.id", "ghost@eslims.my.id"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := s.GetProfile(ctx, a.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)
}
