package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/filekit/internal/logger"
	"github.com/sbilibin2017/filekit/internal/middlewares"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScanHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockScanner(ctrl)
	invoice := []formFile{{"invoice.pdf", "%PDF-1.4"}}

	t.Run("success", func(t *testing.T) {
		mockSvc.EXPECT().
			Scan(gomock.Any(), int64(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, uploads []services.Upload) (*models.FileDB, error) {
				require.Len(t, uploads, 1)
				assert.Equal(t, "invoice.pdf", uploads[0].Filename)
				data, _ := io.ReadAll(uploads[0].Content)
				assert.Equal(t, "%PDF-1.4", string(data))
				return &models.FileDB{ID: 1, Path: "/out/output_invoice_data_x.csv"}, nil
			})

		rr := httptest.NewRecorder()
		NewScanHandler(mockSvc).ServeHTTP(rr, multipartRequest(t, "/file/scan", invoice, map[string]string{"userId": "1"}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"msg": "CSV created successfully.", "csv_path": "/out/output_invoice_data_x.csv"}`, rr.Body.String())
	})

	tests := []struct {
		name         string
		files        []formFile
		fields       map[string]string
		expectedCode int
		expectedMsg  string
	}{
		{"no files", nil, map[string]string{"userId": "1"}, http.StatusBadRequest, "No files part in the request"},
		{"no files and no user", nil, nil, http.StatusBadRequest, "No files part in the request"},
		{"missing user", invoice, nil, http.StatusUnauthorized, "UnAuthorized request"},
		{"non numeric user", invoice, map[string]string{"userId": "abc"}, http.StatusUnauthorized, "UnAuthorized request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewScanHandler(mockSvc).ServeHTTP(rr, multipartRequest(t, "/file/scan", tt.files, tt.fields))

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, tt.expectedMsg, decodeMessage(t, rr).Msg)
		})
	}

	t.Run("pipeline failure", func(t *testing.T) {
		mockSvc.EXPECT().Scan(gomock.Any(), int64(2), gomock.Any()).Return(nil, errors.New("no tables found in response"))

		rr := httptest.NewRecorder()
		NewScanHandler(mockSvc).ServeHTTP(rr, multipartRequest(t, "/file/scan", invoice, map[string]string{"userId": "2"}))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Error processing file: no tables found in response", decodeMessage(t, rr).Msg)
	})
}

func TestScanHandler_TokenSubject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockScanner(ctrl)
	mockTokener := middlewares.NewMockTokener(ctrl)
	mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("tok", nil).AnyTimes()
	mockTokener.EXPECT().GetUserID(gomock.Any(), "tok").Return(int64(7), nil).AnyTimes()

	h := middlewares.AuthMiddleware(mockTokener)(NewScanHandler(mockSvc))
	invoice := []formFile{{"invoice.pdf", "%PDF-1.4"}}

	t.Run("other user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, multipartRequest(t, "/file/scan", invoice, map[string]string{"userId": "8"}))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "UnAuthorized request", decodeMessage(t, rr).Msg)
	})

	t.Run("token owner", func(t *testing.T) {
		mockSvc.EXPECT().Scan(gomock.Any(), int64(7), gomock.Any()).Return(&models.FileDB{ID: 3, Path: "/out/a.csv"}, nil)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, multipartRequest(t, "/file/scan", invoice, map[string]string{"userId": "7"}))

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestScanHandler_LogsRequestID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	core, logs := observer.New(zapcore.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core).Sugar()
	defer func() { logger.Log = prev }()

	mockSvc := NewMockScanner(ctrl)
	mockSvc.EXPECT().Scan(gomock.Any(), int64(1), gomock.Any()).Return(nil, errors.New("llamaparse unavailable"))

	req := multipartRequest(t, "/file/scan", []formFile{{"invoice.pdf", "%PDF-1.4"}}, map[string]string{"userId": "1"})
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	middlewares.LoggingMiddleware(NewScanHandler(mockSvc)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	entries := logs.FilterMessage("scan failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["user_id"])
}
