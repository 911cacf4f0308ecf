package reports

import (
	"io"
	"time"

	"roster/internal/domain/directory"
)

type RoleCount struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	UserCount int    `json:"userCount"`
}

type Summary struct {
	Users       directory.StatusCounts `json:"users"`
	PayTypes    map[string]int         `json:"payTypes"`
	Roles       []RoleCount            `json:"roles"`
	Unassigned  int                    `json:"unassigned"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

type Service struct {
	Directory *directory.Store
	now       func() time.Time
}

func NewService(store *directory.Store) *Service {
	return &Service{Directory: store, now: func() time.Time { return time.Now().UTC() }}
}

// Summary reports headcounts by status, pay type and role. Users without
// any role are counted as unassigned.
func (s *Service) Summary() Summary {
	users := s.Directory.Users()
	roles := s.Directory.Roles()

	out := Summary{
		Users:       directory.CountByStatus(users),
		PayTypes:    map[string]int{string(directory.PayTypeHourly): 0, string(directory.PayTypeSalary): 0},
		Roles:       make([]RoleCount, 0, len(roles)),
		GeneratedAt: s.now(),
	}
	for _, u := range users {
		out.PayTypes[string(u.PayType)]++
		if len(u.Roles) == 0 {
			out.Unassigned++
		}
	}
	for _, summary := range directory.SummarizeRoles(roles, users) {
		out.Roles = append(out.Roles, RoleCount{
			ID:        summary.ID,
			Name:      summary.Name,
			Color:     summary.Color,
			UserCount: summary.UserCount,
		})
	}
	return out
}

// RosterPDF writes the filtered roster, ordered by last name, as a PDF.
func (s *Service) RosterPDF(w io.Writer, filter directory.UserFilter) error {
	users := directory.FilterUsers(s.Directory.Users(), filter)
	return writeRosterPDF(w, RosterDocument{
		Title:       "Employee Roster",
		Filter:      filter,
		Users:       users,
		Roles:       s.Directory.Roles(),
		GeneratedAt: s.now(),
	})
}
