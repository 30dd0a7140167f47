package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factlens/factlens/internal/genchain"
	"github.com/factlens/factlens/internal/model"
)

// stubService implements reportVerifier.
type stubService struct {
	report *model.Report
	err    error

	lastText       string
	lastContextURL string
}

func (s *stubService) Verify(_ context.Context, text, contextURL string) (*model.Report, error) {
	s.lastText = text
	s.lastContextURL = contextURL
	return s.report, s.err
}

func TestRouter_Health(t *testing.T) {
	router := newRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestRouter_Verify_Success(t *testing.T) {
	svc := &stubService{report: &model.Report{
		Claims: []model.ClaimVerdict{{
			ID:         "c1",
			Text:       "claim",
			Status:     model.StatusVerified,
			Confidence: 90,
		}},
		Citations:    []model.CitationVerdict{},
		OverallScore: 100,
	}}
	router := newRouter(svc)

	body := `{"text": "The Eiffel Tower is in Paris.", "context_url": "https://example.com/bg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The Eiffel Tower is in Paris.", svc.lastText)
	assert.Equal(t, "https://example.com/bg", svc.lastContextURL)

	var got model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 100, got.OverallScore)
	require.Len(t, got.Claims, 1)
	assert.Equal(t, model.StatusVerified, got.Claims[0].Status)
}

func TestRouter_Verify_EmptyText(t *testing.T) {
	router := newRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(`{"text": "   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text is required")
}

func TestRouter_Verify_MalformedBody(t *testing.T) {
	router := newRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Verify_NotConfigured(t *testing.T) {
	router := newRouter(&stubService{err: genchain.ErrNotConfigured})

	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(`{"text": "x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "no generation provider configured")
}
