package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"roster/internal/app/server"
	"roster/internal/domain/audit"
	"roster/internal/domain/directory"
	"roster/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func testConfig() config.Config {
	return config.Config{
		Addr:               ":0",
		Environment:        "test",
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		AdminEmail:         "admin@test.local",
		AdminPassword:      "ChangeMe123!",
		AdminUserID:        directory.SeedUserAdmin,
		AuthRequired:       true,
		FrontendDir:        "frontend/dist",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
		SeedData:           true,
		AuditCapacity:      100,
	}
}

func startApp(t *testing.T, cfg config.Config) (*server.App, *httptest.Server) {
	t.Helper()
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return app, ts
}

func TestDirectoryJourney(t *testing.T) {
	cfg := testConfig()
	app, ts := startApp(t, cfg)
	client := ts.Client()
	token := login(t, client, ts.URL, cfg.AdminEmail, cfg.AdminPassword)

	var users []directory.User
	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/users", token, nil, http.StatusOK), &users)
	if len(users) != 5 || users[0].LastName != "Brown" || users[4].LastName != "Wilson" {
		t.Fatalf("expected seeded users sorted by last name, got %d", len(users))
	}

	invalid := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/users", token, map[string]any{
		"firstName": "Ada",
		"status":    "retired",
	}, http.StatusBadRequest)
	fields, _ := invalid.Error.Details["fields"].([]any)
	if invalid.Error.Code != "validation_error" || len(fields) == 0 {
		t.Fatalf("expected field issues, got %+v", invalid.Error)
	}

	var created directory.User
	decode(t, doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/users", token, validUser("ada@example.com"), http.StatusCreated), &created)
	if created.ID == "" || created.CreatedAt.IsZero() || created.Country != directory.DefaultCountry {
		t.Fatalf("unexpected created user %+v", created)
	}

	var patched directory.User
	decode(t, doJSON(t, client, http.MethodPatch, ts.URL+"/api/v1/users/"+created.ID, token, map[string]any{
		"status": "inactive",
	}, http.StatusOK), &patched)
	if patched.Status != directory.StatusInactive || patched.FirstName != "Ada" {
		t.Fatalf("expected merged patch, got %+v", patched)
	}

	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/users?status=inactive", token, nil, http.StatusOK), &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 inactive users, got %d", len(users))
	}

	var role directory.Role
	decode(t, doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/roles", token, map[string]any{
		"name":        "Auditor",
		"description": "Reads logs",
		"color":       "#111111",
		"permissions": []string{directory.PermSystemLogs},
	}, http.StatusCreated), &role)

	doJSON(t, client, http.MethodPatch, ts.URL+"/api/v1/users/"+created.ID, token, map[string]any{
		"roles": []string{role.ID, directory.SeedRoleEmployee},
	}, http.StatusOK)

	var summaries []directory.RoleSummary
	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/roles", token, nil, http.StatusOK), &summaries)
	for _, s := range summaries {
		if s.ID == role.ID && s.UserCount != 1 {
			t.Fatalf("expected new role to count one user, got %d", s.UserCount)
		}
	}

	unconfirmed := doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/roles/"+role.ID, token, nil, http.StatusPreconditionRequired)
	if unconfirmed.Error.Code != "confirmation_required" {
		t.Fatalf("expected confirmation_required, got %+v", unconfirmed.Error)
	}

	var deleted struct {
		Deleted       bool     `json:"deleted"`
		AffectedUsers []string `json:"affectedUsers"`
	}
	decode(t, doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/roles/"+role.ID+"?confirm=true", token, nil, http.StatusOK), &deleted)
	if !deleted.Deleted || len(deleted.AffectedUsers) != 1 || deleted.AffectedUsers[0] != created.ID {
		t.Fatalf("unexpected role delete result %+v", deleted)
	}

	var details struct {
		User  directory.User   `json:"user"`
		Roles []directory.Role `json:"roles"`
	}
	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/users/"+created.ID, token, nil, http.StatusOK), &details)
	if len(details.User.Roles) != 1 || details.User.Roles[0] != directory.SeedRoleEmployee {
		t.Fatalf("expected role stripped from user, got %v", details.User.Roles)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/users/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Confirm", "true")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected delete with header confirmation, got %d", resp.StatusCode)
	}
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/users/"+created.ID, token, nil, http.StatusNotFound)
	gone := doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/users/"+created.ID+"?confirm=true", token, nil, http.StatusNotFound)
	if gone.Error.Code != "not_found" {
		t.Fatalf("expected not_found for a repeated delete, got %+v", gone.Error)
	}
	doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/roles/"+role.ID, token, nil, http.StatusNotFound)

	if app.Audit.Count(context.Background(), audit.Filter{EntityType: "user"}) < 3 {
		t.Fatal("expected user mutations to be audited")
	}
}

func TestReportsAndMetrics(t *testing.T) {
	cfg := testConfig()
	_, ts := startApp(t, cfg)
	client := ts.Client()
	token := login(t, client, ts.URL, cfg.AdminEmail, cfg.AdminPassword)

	var summary struct {
		Users directory.StatusCounts `json:"users"`
	}
	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/reports/summary", token, nil, http.StatusOK), &summary)
	if summary.Users.Total != 5 || summary.Users.Inactive != 1 {
		t.Fatalf("unexpected summary %+v", summary.Users)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/reports/roster.pdf?status=active", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("pdf request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" || !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Fatalf("unexpected pdf response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	var snapshot map[string]any
	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/metrics", token, nil, http.StatusOK), &snapshot)
	if snapshot["requestsTotal"].(float64) < 2 {
		t.Fatalf("expected recorded requests, got %v", snapshot["requestsTotal"])
	}
}

func TestIdempotentCreateAndAuditExport(t *testing.T) {
	cfg := testConfig()
	app, ts := startApp(t, cfg)
	client := ts.Client()
	token := login(t, client, ts.URL, cfg.AdminEmail, cfg.AdminPassword)

	post := func(body map[string]any) (int, []byte, http.Header) {
		raw, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/users", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "create-grace")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		defer resp.Body.Close()
		out, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, out, resp.Header
	}

	status, first, _ := post(validUser("grace@example.com"))
	if status != http.StatusCreated {
		t.Fatalf("expected created, got %d: %s", status, first)
	}
	status, second, header := post(validUser("grace@example.com"))
	if status != http.StatusCreated || header.Get("Idempotent-Replayed") != "true" || !bytes.Equal(first, second) {
		t.Fatalf("expected replayed response, got %d %q", status, header.Get("Idempotent-Replayed"))
	}
	if got := len(app.Directory.Users()); got != 6 {
		t.Fatalf("expected one user created, have %d", got)
	}
	if status, _, _ = post(validUser("other@example.com")); status != http.StatusConflict {
		t.Fatalf("expected key reuse with another body to conflict, got %d", status)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/audit/events/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected export response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(body, []byte("id,actor_user_id,action")) || !bytes.Contains(body, []byte(directory.SeedUserAdmin)) {
		t.Fatalf("unexpected export body:\n%s", body)
	}
}

func TestPermissionsFollowOperatorRoles(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRequired = false
	cfg.AdminUserID = "user-3" // seeded employee: user_view and timeclock_view only
	_, ts := startApp(t, cfg)
	client := ts.Client()

	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/users", "", nil, http.StatusOK)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/permissions", "", nil, http.StatusOK)
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/users", "", validUser("x@example.com"), http.StatusForbidden)
	doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/roles/role-hr?confirm=true", "", nil, http.StatusForbidden)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/audit/events", "", nil, http.StatusForbidden)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	_, ts := startApp(t, testConfig())
	client := ts.Client()

	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/users", "", nil, http.StatusUnauthorized)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/me", "", nil, http.StatusUnauthorized)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/users", "not-a-token", nil, http.StatusUnauthorized)
}

func TestDirectoryPersistsAcrossRestart(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	cfg := testConfig()
	cfg.DatabaseURL = dbURL

	first, ts := startApp(t, cfg)
	token := login(t, ts.Client(), ts.URL, cfg.AdminEmail, cfg.AdminPassword)
	email := fmt.Sprintf("restart-%d@example.com", time.Now().UnixNano())
	var created directory.User
	decode(t, doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/users", token, validUser(email), http.StatusCreated), &created)
	first.Close()

	second, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to restart app: %v", err)
	}
	defer second.Close()
	reloaded, ok := second.Directory.User(created.ID)
	if !ok || reloaded.Email != email {
		t.Fatalf("expected user to survive restart, got %+v", reloaded)
	}
	if second.Audit.Count(context.Background(), audit.Filter{Action: "directory.user.create"}) == 0 {
		t.Fatal("expected audit events to survive restart")
	}
}

func validUser(email string) map[string]any {
	return map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     email,
		"phone":     "(555) 123-4567",
		"address":   "12 Analytical Way",
		"city":      "London",
		"state":     "LN",
		"startDate": "2024-02-01",
		"clockCode": "2001",
		"payType":   "salary",
		"roles":     []string{directory.SeedRoleEmployee},
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func decode(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}
