package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roster/internal/domain/directory"
)

func TestParsePaginationClampsLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users?limit=500&offset=2", nil)
	page := ParsePagination(req, 50, 200)
	if page.Limit != 200 || page.Offset != 2 {
		t.Fatalf("unexpected pagination %+v", page)
	}

	req = httptest.NewRequest(http.MethodGet, "/users?limit=-1&offset=x", nil)
	page = ParsePagination(req, 50, 200)
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", page)
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	if got := Window(items, Pagination{Limit: 2, Offset: 1}); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("unexpected window %v", got)
	}
	if got := Window(items, Pagination{Limit: 10, Offset: 3}); len(got) != 2 {
		t.Fatalf("expected tail window, got %v", got)
	}
	if got := Window(items, Pagination{Limit: 2, Offset: 9}); len(got) != 0 {
		t.Fatalf("expected empty window, got %v", got)
	}
}

func TestConfirmed(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/users/1?confirm=true", nil)
	if !Confirmed(req) {
		t.Fatal("expected query confirmation")
	}

	req = httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	req.Header.Set(ConfirmHeader, "true")
	if !Confirmed(req) {
		t.Fatal("expected header confirmation")
	}

	req = httptest.NewRequest(http.MethodDelete, "/users/1?confirm=nope", nil)
	if Confirmed(req) {
		t.Fatal("did not expect confirmation")
	}
}

func TestValidatorRejectsWithFieldDetails(t *testing.T) {
	v := NewValidator()
	v.Form(directory.FieldErrors{"lastName": "Last name is required"})
	v.OneOf("status", "retired", "active", "inactive")
	v.Date("startDate", "2024-01-15T09:00:00Z")

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation_error" || len(body.Error.Details.Fields) != 3 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Error.Details.Fields[0].Field != "lastName" {
		t.Fatalf("expected issues sorted by field, got %+v", body.Error.Details.Fields)
	}
}

func TestValidatorAcceptsEmptyOptionalValues(t *testing.T) {
	v := NewValidator()
	v.OneOf("status", "", "active")
	v.OneOf("payType", "salary", "hourly", "salary")
	v.Date("endDate", "")
	if !v.Empty() {
		t.Fatalf("expected no issues, got %+v", v.Issues())
	}
}
