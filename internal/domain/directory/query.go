package directory

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterAll disables the status or role predicate.
const FilterAll = "all"

type UserFilter struct {
	Search string
	Status string
	Role   string
}

func (f UserFilter) matches(u User) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.FullName()), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) {
			return false
		}
	}
	if f.Status != "" && f.Status != FilterAll && string(u.Status) != f.Status {
		return false
	}
	if f.Role != "" && f.Role != FilterAll && !u.HasRole(f.Role) {
		return false
	}
	return true
}

// FilterUsers returns the users matching every predicate of f, ordered by
// last name. The input slice is left untouched.
func FilterUsers(users []User, f UserFilter) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if f.matches(u) {
			out = append(out, u)
		}
	}
	SortByLastName(out)
	return out
}

// SortByLastName orders users by last name ignoring case, keeping the
// relative order of equal names.
func SortByLastName(users []User) {
	c := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(users, func(a, b User) int {
		return c.CompareString(strings.ToLower(a.LastName), strings.ToLower(b.LastName))
	})
}

func CountUsersForRole(users []User, roleID string) int {
	count := 0
	for _, u := range users {
		if u.HasRole(roleID) {
			count++
		}
	}
	return count
}

type StatusCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// CountByStatus counts active users; every other user counts as inactive.
func CountByStatus(users []User) StatusCounts {
	active := 0
	for _, u := range users {
		if u.Status == StatusActive {
			active++
		}
	}
	return StatusCounts{Total: len(users), Active: active, Inactive: len(users) - active}
}

// ResolveRoles returns, in collection order, the roles the user references.
// Dangling ids are skipped.
func ResolveRoles(u User, roles []Role) []Role {
	out := make([]Role, 0, len(u.Roles))
	for _, r := range roles {
		if u.HasRole(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// RoleSummary pairs a role with the live number of users holding it.
type RoleSummary struct {
	Role
	UserCount int `json:"userCount"`
}

func SummarizeRoles(roles []Role, users []User) []RoleSummary {
	out := make([]RoleSummary, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleSummary{Role: r, UserCount: CountUsersForRole(users, r.ID)})
	}
	return out
}

// EffectivePermissions is the union of the permissions granted by the
// user's existing roles, in catalog order.
func EffectivePermissions(u User, roles []Role) []string {
	granted := map[string]bool{}
	for _, r := range ResolveRoles(u, roles) {
		for _, perm := range r.Permissions {
			granted[perm] = true
		}
	}
	out := []string{}
	for _, perm := range permissionCatalog {
		if granted[perm.ID] {
			out = append(out, perm.ID)
		}
	}
	return out
}
