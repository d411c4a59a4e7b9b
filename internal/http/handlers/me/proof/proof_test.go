package proof

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage/objectstore"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) UploadProof(ctx context.Context, userID string, data []byte) (models.SubscriptionView, error) {
	args := m.Called(ctx, userID, data)
	return args.Get(0).(models.SubscriptionView), args.Error(1)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "bukti.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProofHandler_ServeHTTP(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		field      string
		data       []byte
		callSvc    bool
		svcErr     error
		wantStatus int
	}{
		{name: "чек принят", field: "file", data: pngHeader, callSvc: true, wantStatus: http.StatusOK},
		{name: "нет поля file", field: "image", data: pngHeader, wantStatus: http.StatusBadRequest},
		{
			name:       "не изображение",
			field:      "file",
			data:       []byte("%PDF-1.4"),
			callSvc:    true,
			svcErr:     fmt.Errorf("objectstore.UploadProof: %w", objectstore.ErrUnsupportedType),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "хранилище недоступно",
			field:      "file",
			data:       pngHeader,
			callSvc:    true,
			svcErr:     fmt.Errorf("objectstore.UploadProof: %w", objectstore.ErrUpload),
			wantStatus: http.StatusBadGateway,
		},
		{name: "слишком большой файл", field: "file", data: bytes.Repeat([]byte{1}, 2<<20), wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callSvc {
				svc.On("UploadProof", mock.Anything, "user-1", tt.data).
					Return(models.SubscriptionView{Subscription: models.Subscription{ID: "sub-1"}}, tt.svcErr).Once()
			}

			body, contentType := multipartBody(t, tt.field, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/me/subscription/proof", body)
			req.Header.Set("Content-Type", contentType)
			req = req.WithContext(middlewarectx.WithSession(req.Context(), identity.Session{UserID: "user-1"}))
			rr := httptest.NewRecorder()
			New(log, svc, 1024).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
