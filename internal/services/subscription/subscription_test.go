package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cloudslims/internal/cache"
	"github.com/magabrotheeeer/cloudslims/internal/config"
	"github.com/magabrotheeeer/cloudslims/internal/invoice"
	"github.com/magabrotheeeer/cloudslims/internal/lifecycle"
	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage"
)

// memRepo — хранилище в памяти с той же семантикой «текущей» записи, что и PostgreSQL.
type memRepo struct {
	mu        sync.Mutex
	profiles  map[string]models.Profile
	subs      map[string]models.Subscription
	failWrite error
	writes    int
}

func newMemRepo() *memRepo {
	return &memRepo{profiles: map[string]models.Profile{}, subs: map[string]models.Subscription{}}
}

func (r *memRepo) GetProfile(_ context.Context, userID string) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) CurrentSubscription(_ context.Context, userID string) (models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cur *models.Subscription
	for _, s := range r.subs {
		if s.UserID != userID {
			continue
		}
		if cur == nil || s.CreatedAt.After(cur.CreatedAt) {
			s := s
			cur = &s
		}
	}
	if cur == nil {
		return models.Subscription{}, storage.ErrNotFound
	}
	return *cur, nil
}

func (r *memRepo) row(s models.Subscription) models.TenantRow {
	p := r.profiles[s.UserID]
	return models.TenantRow{Subscription: s, Profile: &p}
}

func (r *memRepo) GetSubscription(_ context.Context, id string) (models.TenantRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return models.TenantRow{}, storage.ErrNotFound
	}
	return r.row(s), nil
}

func (r *memRepo) write(fn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	r.writes++
	fn()
	return nil
}

func (r *memRepo) InsertSubscription(_ context.Context, sub models.Subscription) error {
	return r.write(func() { r.subs[sub.ID] = sub })
}

func (r *memRepo) UpdateSubscription(_ context.Context, sub models.Subscription) error {
	return r.write(func() { r.subs[sub.ID] = sub })
}

func (r *memRepo) UpdateTenant(_ context.Context, p models.Profile, sub models.Subscription) error {
	return r.write(func() {
		r.profiles[p.ID] = p
		r.subs[sub.ID] = sub
	})
}

func (r *memRepo) DeleteSubscription(_ context.Context, id string) error {
	return r.write(func() { delete(r.subs, id) })
}

func (r *memRepo) ListTenantRows(_ context.Context) ([]models.TenantRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]models.TenantRow, 0, len(r.subs))
	for _, s := range r.subs {
		rows = append(rows, r.row(s))
	}
	slices.SortFunc(rows, func(a, b models.TenantRow) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return rows, nil
}

type ProofsMock struct{ mock.Mock }

func (m *ProofsMock) UploadProof(ctx context.Context, userID string, data []byte) (string, error) {
	args := m.Called(ctx, userID, data)
	return args.String(0), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(n models.Notification) error {
	return m.Called(n).Error(0)
}

var (
	t0       = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	admin    = models.Profile{ID: "admin-1", Email: "admin@cloudslims.id", FullName: "Admin", Role: models.RoleAdmin}
	tenant   = models.Profile{ID: "user-1", Email: "budi@sman1.sch.id", FullName: "Budi Santoso", Institution: "SMAN 1 Bandung", Subdomain: "sman1bdg", Phone: "0812", Role: models.RoleUser}
	proofURL = "https://cdn.eslims.my.id/payment-proofs/user-1/1741593600000.png"
)

type fixture struct {
	svc      *SubscriptionService
	repo     *memRepo
	proofs   *ProofsMock
	notifier *NotifierMock
	mr       *miniredis.Miniredis
	now      *time.Time
}

func setup(t *testing.T) fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	repo := newMemRepo()
	repo.profiles[admin.ID] = admin
	repo.profiles[tenant.ID] = tenant
	repo.subs["a1b2c3d4-0001"] = models.Subscription{
		ID: "a1b2c3d4-0001", UserID: tenant.ID, PlanName: "Pro", Price: 350000,
		Status: models.StatusPending, CreatedAt: t0,
	}

	f := fixture{repo: repo, proofs: new(ProofsMock), notifier: new(NotifierMock), mr: mr}
	now := t0.Add(time.Hour)
	f.now = &now
	f.svc = NewSubscriptionService(repo, c, f.proofs, f.notifier, nil, invoice.DefaultCatalogue(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc.now = func() time.Time { return *f.now }
	ids := 0
	f.svc.newID = func() string {
		ids++
		return "e5f6a7b8-000" + string(rune('0'+ids))
	}
	return f
}

func TestCurrent_CachedRecordLiveFlags(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	until := t0.AddDate(1, 0, 0)
	sub := f.repo.subs["a1b2c3d4-0001"]
	sub.Status, sub.ValidUntil = models.StatusActive, &until
	f.repo.subs[sub.ID] = sub

	v, err := f.svc.Current(ctx, tenant.ID)
	require.NoError(t, err)
	assert.False(t, v.IsExpiringSoon)
	assert.True(t, f.mr.Exists(currentKey(tenant.ID)))

	// Запись берётся из кеша, признаки считаются заново.
	*f.now = until.Add(24 * time.Hour)
	delete(f.repo.subs, sub.ID)
	v, err = f.svc.Current(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, v.IsExpired)
	assert.Equal(t, models.StatusExpired, v.DerivedStatus)
	assert.Equal(t, models.StatusActive, v.Status)
}

func TestCurrent_NotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Current(context.Background(), "nobody")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUploadProof(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	data := []byte("\x89PNG\r\n\x1a\n")

	sub := f.repo.subs["a1b2c3d4-0001"]
	sub.Status = models.StatusRejected
	f.repo.subs[sub.ID] = sub
	_, err := f.svc.Current(ctx, tenant.ID)
	require.NoError(t, err)

	f.proofs.On("UploadProof", ctx, tenant.ID, data).Return(proofURL, nil).Once()

	v, err := f.svc.UploadProof(ctx, tenant.ID, data)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, v.Status)
	require.NotNil(t, v.PaymentProofURL)
	assert.Equal(t, proofURL, *v.PaymentProofURL)
	assert.Equal(t, models.StatusPending, f.repo.subs[sub.ID].Status)
}

func TestUploadProof_UploadFailureLeavesRecord(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	uploadErr := errors.New("bucket unavailable")
	f.proofs.On("UploadProof", ctx, tenant.ID, mock.Anything).Return("", uploadErr).Once()

	_, err := f.svc.UploadProof(ctx, tenant.ID, []byte("x"))
	require.ErrorIs(t, err, uploadErr)
	assert.Zero(t, f.repo.writes)
	assert.Nil(t, f.repo.subs["a1b2c3d4-0001"].PaymentProofURL)
}

func TestRequestRenewal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	until := t0.AddDate(1, 0, 0)
	old := f.repo.subs["a1b2c3d4-0001"]
	old.Status, old.ValidUntil = models.StatusActive, &until
	f.repo.subs[old.ID] = old
	*f.now = until.Add(48 * time.Hour)

	v, err := f.svc.RequestRenewal(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "e5f6a7b8-0001", v.ID)
	assert.Equal(t, models.StatusPending, v.Status)
	assert.Equal(t, "Pro", v.PlanName)
	assert.Equal(t, int64(350000), v.Price)
	assert.Nil(t, v.ValidUntil)

	assert.Equal(t, old, f.repo.subs[old.ID])
	history, err := f.svc.History(ctx, admin.ID, tenant.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, v.ID, history[0].ID)
	assert.Equal(t, []models.Status{models.StatusActive, models.StatusRejected}, history[0].NextStatuses)
}

func TestAdminOps_Forbidden(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, actor := range []string{tenant.ID, "unknown"} {
		_, err := f.svc.AdminList(ctx, actor, ListRequest{})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.Stats(ctx, actor)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.History(ctx, actor, tenant.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.Activate(ctx, actor, "a1b2c3d4-0001", nil)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.Reject(ctx, actor, "a1b2c3d4-0001")
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.Edit(ctx, actor, "a1b2c3d4-0001", models.AdminEdit{})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, f.svc.Delete(ctx, actor, "a1b2c3d4-0001"), ErrForbidden)
		_, err = f.svc.AdminInvoice(ctx, actor, "a1b2c3d4-0001", FormatText)
		assert.ErrorIs(t, err, ErrForbidden)
	}
	assert.Zero(t, f.repo.writes)
}

func TestActivate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Кеш арендатора заполнен до активации.
	_, err := f.svc.Current(ctx, tenant.ID)
	require.NoError(t, err)

	f.notifier.On("Notify", mock.MatchedBy(func(n models.Notification) bool {
		return n.Kind == models.NotificationActivated && n.Email == tenant.Email && n.ValidUntil != nil
	})).Return(nil).Once()

	row, err := f.svc.Activate(ctx, admin.ID, "a1b2c3d4-0001", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, row.Status)
	require.NotNil(t, row.ValidUntil)
	assert.Equal(t, f.now.AddDate(1, 0, 0), *row.ValidUntil)
	assert.Equal(t, []models.Status{models.StatusPending}, row.NextStatuses)
	f.notifier.AssertExpectations(t)

	v, err := f.svc.Current(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, v.Status)
	require.NotNil(t, v.DaysRemaining)
	assert.Equal(t, 365, *v.DaysRemaining)
}

func TestActivate_ExplicitValidUntil(t *testing.T) {
	f := setup(t)
	f.notifier.On("Notify", mock.Anything).Return(nil)
	until := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	row, err := f.svc.Activate(context.Background(), admin.ID, "a1b2c3d4-0001", &until)
	require.NoError(t, err)
	assert.Equal(t, until, *row.ValidUntil)
}

func TestActivate_FromRejectedIsInvalid(t *testing.T) {
	f := setup(t)
	sub := f.repo.subs["a1b2c3d4-0001"]
	sub.Status = models.StatusRejected
	f.repo.subs[sub.ID] = sub

	_, err := f.svc.Activate(context.Background(), admin.ID, sub.ID, nil)
	require.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Zero(t, f.repo.writes)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything)
}

func TestTransition_PersistenceFailure(t *testing.T) {
	f := setup(t)
	f.repo.failWrite = errors.New("connection refused")

	_, err := f.svc.Reject(context.Background(), admin.ID, "a1b2c3d4-0001")
	require.ErrorIs(t, err, f.repo.failWrite)
	assert.Equal(t, models.StatusPending, f.repo.subs["a1b2c3d4-0001"].Status)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything)
}

func TestReject_NotifierDownStillSucceeds(t *testing.T) {
	f := setup(t)
	f.notifier.On("Notify", mock.Anything).Return(errors.New("broker closed")).Once()

	row, err := f.svc.Reject(context.Background(), admin.ID, "a1b2c3d4-0001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, row.Status)
	assert.Nil(t, row.ValidUntil)
}

func TestEdit(t *testing.T) {
	f := setup(t)
	f.notifier.On("Notify", mock.MatchedBy(func(n models.Notification) bool {
		return n.Kind == models.NotificationActivated
	})).Return(nil).Once()

	plan := "Starter"
	status := models.StatusActive
	subdomain := "SMAN 1 BDG"
	row, err := f.svc.Edit(context.Background(), admin.ID, "a1b2c3d4-0001", models.AdminEdit{
		PlanName:  &plan,
		Status:    &status,
		Subdomain: &subdomain,
	})
	require.NoError(t, err)
	assert.Equal(t, "Starter", row.PlanName)
	assert.Equal(t, int64(150000), row.Price)
	assert.Equal(t, models.StatusActive, row.Status)
	require.NotNil(t, row.ValidUntil)
	assert.Equal(t, "sman1bdg", row.Profile.Subdomain)
	f.notifier.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, admin.ID, "a1b2c3d4-0001"))
	_, err := f.svc.Current(ctx, tenant.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = f.svc.Delete(ctx, admin.ID, "a1b2c3d4-0001")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdminList_RemembersFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := range 7 {
		id := "b0000000-000" + string(rune('0'+i))
		f.repo.subs[id] = models.Subscription{
			ID: id, UserID: tenant.ID, PlanName: "Starter", Price: 150000,
			Status: models.StatusActive, CreatedAt: t0.Add(time.Duration(i+1) * time.Minute),
		}
	}

	active := "active"
	page := 2
	p, err := f.svc.AdminList(ctx, admin.ID, ListRequest{Status: &active, Page: &page})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 2, p.TotalPages)
	assert.Len(t, p.Rows, 2)

	// Фильтр сохранился, страница тоже.
	p, err = f.svc.AdminList(ctx, admin.ID, ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 7, p.Total)

	// Смена фильтра возвращает на первую страницу.
	search := "sman 1"
	p, err = f.svc.AdminList(ctx, admin.ID, ListRequest{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 7, p.Total)

	// Страница за пределами приводится к последней.
	far := 99
	p, err = f.svc.AdminList(ctx, admin.ID, ListRequest{Page: &far})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)

	// После удалений сохранённая страница не выходит за последнюю.
	for i := range 3 {
		require.NoError(t, f.svc.Delete(ctx, admin.ID, "b0000000-000"+string(rune('0'+i))))
	}
	p, err = f.svc.AdminList(ctx, admin.ID, ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.TotalPages)
	assert.Len(t, p.Rows, 4)
}

func TestStats(t *testing.T) {
	f := setup(t)
	f.notifier.On("Notify", mock.Anything).Return(nil)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, admin.ID, "a1b2c3d4-0001", nil)
	require.NoError(t, err)

	st, err := f.svc.Stats(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalTenants: 1, Pending: 0, Revenue: 350000, MRR: 29167}, st)
}

func TestInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	r, err := f.svc.Invoice(ctx, tenant.ID, FormatText)
	require.NoError(t, err)
	assert.Equal(t, "Invoice-A1B2C3D4.txt", r.Filename)
	assert.True(t, strings.HasPrefix(r.ContentType, "text/plain"))
	assert.Contains(t, string(r.Body), "Rp 350.000")
	assert.Contains(t, string(r.Body), "SMAN 1 Bandung")

	pdf, err := f.svc.AdminInvoice(ctx, admin.ID, "a1b2c3d4-0001", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, strings.HasPrefix(string(pdf.Body), "%PDF"))

	_, err = f.svc.Invoice(ctx, tenant.ID, Format("docx"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPDF, "pdf": FormatPDF, "text": FormatText} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("html")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
