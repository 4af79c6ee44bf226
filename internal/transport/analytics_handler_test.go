package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gearbox/internal/analytics"
	"gearbox/internal/config"
	"gearbox/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const testInternalKey = "test-internal-key"

func newAnalyticsRouter(cfg config.AnalyticsConfig, internalKey string) *chi.Mux {
	logger := zap.NewNop()
	client := analytics.NewClient(cfg, logger)
	handler := NewAnalyticsHandler(client, logger)

	router := chi.NewRouter()
	router.Route("/api", func(api chi.Router) {
		handler.RegisterRoutes(api, middleware.InternalAuthMiddleware(internalKey, logger))
	})
	return router
}

func configuredAgainst(upstream string) config.AnalyticsConfig {
	return config.AnalyticsConfig{
		BaseURL:   upstream,
		ProjectID: "prj_123",
		TeamID:    "team_456",
		Token:     "secret-token",
	}
}

func TestAnalyticsHandler_RequiresInternalKey(t *testing.T) {
	router := newAnalyticsRouter(configuredAgainst("http://127.0.0.1:0"), testInternalKey)

	cases := []struct {
		name string
		key  string
	}{
		{"missing key", ""},
		{"wrong key", "not-the-key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
			if tc.key != "" {
				req.Header.Set(middleware.InternalAPIKeyHeader, tc.key)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rr.Code)
			}
		})
	}
}

func TestAnalyticsHandler_MissingCredentialsIsServerError(t *testing.T) {
	router := newAnalyticsRouter(config.AnalyticsConfig{BaseURL: "http://127.0.0.1:0"}, testInternalKey)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	req.Header.Set(middleware.InternalAPIKeyHeader, testInternalKey)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "missing analytics configuration") {
		t.Errorf("body missing configuration error: %s", rr.Body.String())
	}
}

func TestAnalyticsHandler_ProxiesUpstreamSummary(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("upstream auth header = %q", got)
		}
		if got := r.URL.Query().Get("projectId"); got != "prj_123" {
			t.Errorf("projectId = %q", got)
		}
		if r.URL.Query().Get("since") == "" || r.URL.Query().Get("until") == "" {
			t.Error("missing date range on upstream request")
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/analytics":
			w.Write([]byte(`{"pageViews": 1234}`))
		case "/v1/speed-insights":
			w.Write([]byte(`{"lcp": 1.8}`))
		default:
			t.Errorf("unexpected upstream path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	router := newAnalyticsRouter(configuredAgainst(upstream.URL), testInternalKey)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	req.Header.Set(middleware.InternalAPIKeyHeader, testInternalKey)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp SummaryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if string(resp.Data.Traffic) != `{"pageViews": 1234}` {
		t.Errorf("traffic payload not passed through: %s", resp.Data.Traffic)
	}
	if string(resp.Data.Vitals) != `{"lcp": 1.8}` {
		t.Errorf("vitals payload not passed through: %s", resp.Data.Vitals)
	}
}

func TestAnalyticsHandler_VitalsFailureIsBestEffort(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/speed-insights" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": "no speed insights plan"}`))
			return
		}
		w.Write([]byte(`{"pageViews": 10}`))
	}))
	defer upstream.Close()

	router := newAnalyticsRouter(configuredAgainst(upstream.URL), testInternalKey)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	req.Header.Set(middleware.InternalAPIKeyHeader, testInternalKey)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when only vitals fail: %s", rr.Code, rr.Body.String())
	}

	var resp SummaryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.Vitals) != 0 {
		t.Errorf("failed vitals should be omitted, got %s", resp.Data.Vitals)
	}
	if string(resp.Data.Traffic) != `{"pageViews": 10}` {
		t.Errorf("traffic payload not passed through: %s", resp.Data.Traffic)
	}
}

func TestAnalyticsHandler_UpstreamFailurePropagatesStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "invalid token"}`))
	}))
	defer upstream.Close()

	router := newAnalyticsRouter(configuredAgainst(upstream.URL), testInternalKey)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	req.Header.Set(middleware.InternalAPIKeyHeader, testInternalKey)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}

	var errResp middleware.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if got := errResp.Error.Details["status"]; got != float64(http.StatusForbidden) {
		t.Errorf("details.status = %v, want 403", got)
	}
	detail, _ := errResp.Error.Details["detail"].(string)
	if !strings.Contains(detail, "invalid token") {
		t.Errorf("details.detail missing upstream body: %q", detail)
	}
}

func TestAnalyticsHandler_SummaryRangeRejectsInvalidBody(t *testing.T) {
	router := newAnalyticsRouter(configuredAgainst("http://127.0.0.1:0"), testInternalKey)

	req := httptest.NewRequest(http.MethodPost, "/api/analytics/summary", strings.NewReader(`{"since": -5}`))
	req.Header.Set(middleware.InternalAPIKeyHeader, testInternalKey)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
