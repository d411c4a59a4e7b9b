package stats

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Stats(ctx context.Context, actorID string) (models.Stats, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).(models.Stats), args.Error(1)
}

func TestStatsHandler_ServeHTTP(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Stats", mock.Anything, "admin-1").
		Return(models.Stats{TotalTenants: 4, Pending: 1, Revenue: 350000, MRR: 29167}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req = req.WithContext(middlewarectx.WithSession(req.Context(), identity.Session{UserID: "admin-1"}))
	rr := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK","data":{"total_tenants":4,"pending":1,"revenue":350000,"mrr":29167}}`, rr.Body.String())
}
