package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Deeppati2005/hms/internal/domain/account"
	"github.com/Deeppati2005/hms/internal/platform/apperr"
)

func newTestServer() (*fakeAccounts, *echo.Echo) {
	svc, accounts, _ := newTestService()
	e := echo.New()
	e.HTTPErrorHandler = apperr.ErrorHandler(zerolog.Nop())
	NewHandler(svc).RegisterRoutes(e.Group("/api/admins"))
	return accounts, e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ProfileRoutes(t *testing.T) {
	accounts, e := newTestServer()
	accounts.add(account.RoleAdmin, "root")

	rec := do(e, http.MethodGet, "/api/admins/profile", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"root"`) {
		t.Fatalf("unexpected profile %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPut, "/api/admins/profile", `{"username":"root","name":"Head Admin"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Head Admin"`) {
		t.Fatalf("unexpected update %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_GetAdmin(t *testing.T) {
	accounts, e := newTestServer()
	accounts.add(account.RoleAdmin, "root")

	if rec := do(e, http.MethodGet, "/api/admins/root", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	rec := do(e, http.MethodGet, "/api/admins/ghost", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Admin not found") {
		t.Errorf("expected 404 Admin not found, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_DoctorStatus(t *testing.T) {
	accounts, e := newTestServer()
	d := accounts.add(account.RoleDoctor, "drA")
	path := "/api/admins/doctors/" + strconv.FormatInt(d.ID, 10) + "/status"

	rec := do(e, http.MethodPut, path, `{"status":"approved"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res map[string]string
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res["id"] != strconv.FormatInt(d.ID, 10) || res["status"] != "approved" || res["message"] != "Status updated successfully" {
		t.Errorf("unexpected response %v", res)
	}

	rec = do(e, http.MethodGet, path, "")
	if !strings.Contains(rec.Body.String(), `"approved":true`) {
		t.Errorf("expected approved, got %s", rec.Body.String())
	}

	if rec := do(e, http.MethodPut, path, `{"status":"maybe"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPut, "/api/admins/doctors/99/status", `{"status":"approved"}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown doctor, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/admins/doctors/x/status", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestHandler_Listings(t *testing.T) {
	accounts, e := newTestServer()
	accounts.add(account.RoleAdmin, "root")
	accounts.add(account.RoleDoctor, "drA")
	accounts.add(account.RolePatient, "pat1")
	accounts.add(account.RolePatient, "pat2")

	for path, want := range map[string]int{
		"/api/admins":              1,
		"/api/admins/doctors":      1,
		"/api/admins/patients":     2,
		"/api/admins/appointments": 0,
	} {
		rec := do(e, http.MethodGet, path, "")
		var list []map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("%s: invalid body %s", path, rec.Body.String())
		}
		if len(list) != want {
			t.Errorf("%s: expected %d entries, got %d", path, want, len(list))
		}
	}
}

func TestHandler_DeletePatient(t *testing.T) {
	accounts, e := newTestServer()
	accounts.add(account.RolePatient, "pat1")

	rec := do(e, http.MethodDelete, "/api/admins/patients/pat1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Patient deleted successfully") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodDelete, "/api/admins/patients/pat1", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Patient not found") {
		t.Errorf("expected 404 Patient not found, got %d %s", rec.Code, rec.Body.String())
	}
}
