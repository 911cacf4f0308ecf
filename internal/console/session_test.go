package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"roster/internal/domain/directory"
)

func seededService() *directory.Service {
	store := directory.NewStore()
	store.Load(directory.SeedUsers(), directory.SeedRoles())
	return directory.NewService(store)
}

func runScript(t *testing.T, svc *directory.Service, lines ...string) (*Session, string) {
	t.Helper()
	var out bytes.Buffer
	session := New(svc, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return session, out.String()
}

func findByEmail(svc *directory.Service, email string) (directory.User, bool) {
	for _, u := range svc.Store.Users() {
		if u.Email == email {
			return u, true
		}
	}
	return directory.User{}, false
}

func TestAddUserFormatsPhoneAndSaves(t *testing.T) {
	svc := seededService()
	session, out := runScript(t, svc,
		"add",
		"Grace", "", "Hopper", "grace@example.com",
		"555.123.4567", "",
		"1 Navy Way", "Arlington", "VA", "", "",
		"2024-05-01", "",
		"", "salary", "2001", "", "",
		"role-employee",
		"n", "n",
		"quit",
	)

	user, ok := findByEmail(svc, "grace@example.com")
	if !ok {
		t.Fatalf("user not saved; output:\n%s", out)
	}
	if user.Phone != "(555) 123-4567" {
		t.Fatalf("expected formatted phone, got %q", user.Phone)
	}
	if user.PayType != directory.PayTypeSalary || user.Status != directory.StatusActive || user.Country != directory.DefaultCountry {
		t.Fatalf("unexpected user %+v", user)
	}
	if len(svc.Store.Users()) != 6 {
		t.Fatalf("expected 6 users, got %d", len(svc.Store.Users()))
	}
	if session.View() != directory.ViewList {
		t.Fatalf("expected list view after save, got %s", session.View())
	}
}

func TestAddUserReasksOnlyFailingFields(t *testing.T) {
	svc := seededService()
	_, out := runScript(t, svc,
		"add",
		"Alan", "", "", "alan@example.com",
		"5550001111", "",
		"2 Bletchley Park", "Milton Keynes", "BK", "", "",
		"2024-06-23", "",
		"", "", "2002", "", "",
		"role-employee",
		"n", "n",
		"Turing",
		"quit",
	)

	if !strings.Contains(out, "lastName: Last name is required") {
		t.Fatalf("expected field error in output:\n%s", out)
	}
	user, ok := findByEmail(svc, "alan@example.com")
	if !ok || user.LastName != "Turing" {
		t.Fatalf("expected user saved after correction, got %+v ok=%v", user, ok)
	}
}

func TestInvalidChoiceIsAskedAgain(t *testing.T) {
	svc := seededService()
	_, out := runScript(t, svc,
		"edit user-3",
		"", "", "", "", "", "", "", "", "", "", "",
		"not-a-date", "2022-02-01", "",
		"retired", "inactive",
		"", "", "", "",
		"nobody", "",
		"n", "n",
		"quit",
	)

	for _, want := range []string{"dates use YYYY-MM-DD", "status must be active or inactive", `unknown role "nobody"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	user, _ := svc.Store.User("user-3")
	if user.StartDate != "2022-02-01" || user.Status != directory.StatusInactive {
		t.Fatalf("unexpected user after edit: %+v", user)
	}
}

func TestCancelDiscardsChanges(t *testing.T) {
	svc := seededService()
	session, out := runScript(t, svc, "edit user-3", "Mary", ":cancel", "quit")

	if !strings.Contains(out, "Changes discarded.") {
		t.Fatalf("expected discard message:\n%s", out)
	}
	user, _ := svc.Store.User("user-3")
	if user.FirstName != "Maria" {
		t.Fatalf("expected first name unchanged, got %q", user.FirstName)
	}
	if session.View() != directory.ViewList {
		t.Fatalf("expected list view, got %s", session.View())
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	svc := seededService()
	_, out := runScript(t, svc, "delete user-4", "n", "delete user-4", "y", "quit")

	if !strings.Contains(out, "Delete cancelled.") {
		t.Fatalf("expected first delete to be cancelled:\n%s", out)
	}
	if _, ok := svc.Store.User("user-4"); ok {
		t.Fatal("expected user-4 deleted after confirmation")
	}
}

func TestDetailsPageDeleteReturnsToList(t *testing.T) {
	svc := seededService()
	session, out := runScript(t, svc, "view user-2", "delete", "yes")

	if !strings.Contains(out, "David Lee Chen (user-2)") {
		t.Fatalf("expected details page:\n%s", out)
	}
	if _, ok := svc.Store.User("user-2"); ok {
		t.Fatal("expected user-2 deleted")
	}
	if session.View() != directory.ViewList {
		t.Fatalf("expected list view, got %s", session.View())
	}
}

func TestAddRoleAndDeleteRole(t *testing.T) {
	svc := seededService()
	session, out := runScript(t, svc,
		"roles",
		"add-role", "Auditor", "Reads the system logs", "", "bogus", "system_logs,reports_view",
		"delete-role role-payroll", "y",
		"back",
		"quit",
	)

	if !strings.Contains(out, `unknown permission "bogus"`) {
		t.Fatalf("expected unknown permission message:\n%s", out)
	}
	var auditor directory.Role
	for _, r := range svc.Store.Roles() {
		if r.Name == "Auditor" {
			auditor = r
		}
	}
	if auditor.ID == "" || auditor.Color != directory.DefaultRoleColor || len(auditor.Permissions) != 2 {
		t.Fatalf("unexpected role %+v", auditor)
	}

	if _, ok := svc.Store.Role(directory.SeedRolePayroll); ok {
		t.Fatal("expected payroll role deleted")
	}
	james, _ := svc.Store.User("user-4")
	if james.HasRole(directory.SeedRolePayroll) {
		t.Fatal("expected payroll role stripped from user-4")
	}
	if !strings.Contains(out, "removed from 1 user(s)") {
		t.Fatalf("expected cascade count:\n%s", out)
	}
	if session.View() != directory.ViewList {
		t.Fatalf("expected list view, got %s", session.View())
	}
}

func TestFiltersNarrowTheList(t *testing.T) {
	svc := seededService()
	_, out := runScript(t, svc, "status inactive", "quit")

	_, filtered, found := strings.Cut(out, "Filter:")
	if !found {
		t.Fatalf("expected filter line:\n%s", out)
	}
	if !strings.Contains(filtered, "James Wilson") || strings.Contains(filtered, "Sarah Johnson") {
		t.Fatalf("unexpected filtered list:\n%s", filtered)
	}
}

func TestCommandsOutsideTheirViewAreRejected(t *testing.T) {
	svc := seededService()
	_, out := runScript(t, svc, "add-role", "view nobody", "quit")

	if !strings.Contains(out, `unknown command "add-role"`) {
		t.Fatalf("expected unknown command error:\n%s", out)
	}
	if !strings.Contains(out, directory.ErrUserNotFound.Error()) {
		t.Fatalf("expected not found error:\n%s", out)
	}
}

func TestEndOfInputStopsSession(t *testing.T) {
	svc := seededService()
	session, _ := runScript(t, svc, "add", "Half")
	if session.View() != directory.ViewAdd {
		t.Fatalf("expected session to stop inside the form, got %s", session.View())
	}
	if len(svc.Store.Users()) != 5 {
		t.Fatal("expected no user saved")
	}
}
