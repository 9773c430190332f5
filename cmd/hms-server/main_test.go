package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Deeppati2005/hms/internal/config"
	"github.com/Deeppati2005/hms/internal/domain/account"
	"github.com/Deeppati2005/hms/internal/domain/admin"
	"github.com/Deeppati2005/hms/internal/domain/scheduling"
	"github.com/Deeppati2005/hms/internal/platform/auth"
	"github.com/Deeppati2005/hms/internal/platform/telemetry"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:            "test",
		CORSOrigins:    []string{"http://localhost:5173"},
		BodyLimit:      "1M",
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

// newTestServer wires the full route table. The repositories are nil, so
// only requests rejected before reaching storage may be sent.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	tel, err := telemetry.NewProvider(context.Background(), telemetry.Config{})
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	t.Cleanup(func() { tel.Shutdown(context.Background()) })

	accountSvc := account.NewService(nil, auth.NewBcryptHasher(bcrypt.MinCost), true)
	schedSvc := scheduling.NewService(nil, nil, scheduling.DefaultOptions())
	adminSvc := admin.NewService(accountSvc, schedSvc)

	e, api := newServer(testConfig(), zerolog.Nop(), tel)
	registerRoutes(api, accountSvc, schedSvc, adminSvc)
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	e := newTestServer(t)
	rec := get(e, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "http://localhost:5173" {
		t.Errorf("expected CORS origin, got %q", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	}
	if rec.Header().Get("X-RateLimit-Limit") != "" {
		t.Error("health endpoint should not be rate limited")
	}
}

func TestServer_Metrics(t *testing.T) {
	e := newTestServer(t)
	get(e, "/health")

	rec := get(e, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `hms_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("expected health request counted, got:\n%s", rec.Body.String())
	}
}

func TestServer_APIIsRateLimited(t *testing.T) {
	e := newTestServer(t)
	rec := get(e, "/api/appointments/available-slots")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing query, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("expected rate limit header, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	if !strings.Contains(rec.Body.String(), `"message"`) {
		t.Errorf("expected message body, got %s", rec.Body.String())
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	e := newTestServer(t)
	rec := get(e, "/nope")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Not Found"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRegisterRoutes(t *testing.T) {
	e := newTestServer(t)

	have := make(map[string]bool)
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}

	want := []string{
		"POST /api/admins/register",
		"POST /api/admins/login",
		"GET /api/admins/check-username/:username",
		"POST /api/admins/reset-password",
		"POST /api/admins/logout",
		"GET /api/admins",
		"GET /api/admins/profile",
		"PUT /api/admins/profile",
		"GET /api/admins/:username",
		"GET /api/admins/doctors",
		"GET /api/admins/doctors/:id/status",
		"PUT /api/admins/doctors/:id/status",
		"GET /api/admins/patients",
		"DELETE /api/admins/patients/:username",
		"GET /api/admins/appointments",

		"POST /api/doctors/register",
		"POST /api/doctors/login",
		"POST /api/doctors/logout",
		"GET /api/doctors",
		"GET /api/doctors/:id",
		"PUT /api/doctors/:username",
		"POST /api/doctors/check-status",
		"GET /api/doctors/:username/appointments",

		"POST /api/patients/register",
		"POST /api/patients/login",
		"POST /api/patients/reset-password",
		"GET /api/patients/:id",
		"PUT /api/patients/:id",
		"GET /api/patients/:username/appointments",
		"POST /api/patients/appointments",
		"DELETE /api/patients/appointments/:id",

		"GET /api/appointments",
		"GET /api/appointments/available-slots",
		"GET /api/appointments/:id",
		"POST /api/appointments",
		"PUT /api/appointments/:id",
		"DELETE /api/appointments/:id",

		"GET /health",
		"GET /metrics",
	}
	for _, w := range want {
		if !have[w] {
			t.Errorf("missing route %s", w)
		}
	}
}

func TestServer_LogoutNeedsNoStorage(t *testing.T) {
	e := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/doctors/logout", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Doctor logged out successfully") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
