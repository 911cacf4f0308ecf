package console

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"roster/internal/domain/directory"
)

func (s *Session) render() {
	switch s.view {
	case directory.ViewList:
		s.renderList()
	case directory.ViewDetails:
		s.renderDetails()
	case directory.ViewRoles:
		s.renderRoles()
	}
}

func (s *Session) renderList() {
	counts := s.svc.StatusCounts()
	fmt.Fprintf(s.out, "\nEmployees: %d total, %d active, %d inactive\n", counts.Total, counts.Active, counts.Inactive)
	if s.filter.Search != "" || s.filter.Status != directory.FilterAll || s.filter.Role != directory.FilterAll {
		fmt.Fprintf(s.out, "Filter: search=%q status=%s role=%s\n", s.filter.Search, s.filter.Status, s.filter.Role)
	}

	users := s.svc.ListUsers(s.filter)
	if len(users) == 0 {
		fmt.Fprintln(s.out, "No users match the current filters.")
		return
	}
	roles := s.svc.Store.Roles()
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tSTATUS\tROLES")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Email, u.Phone, u.Status, roleNames(directory.ResolveRoles(u, roles)))
	}
	_ = tw.Flush()
}

func (s *Session) renderDetails() {
	user, roles, err := s.svc.UserDetails(s.userID)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}

	name := user.FirstName
	if user.MiddleName != "" {
		name += " " + user.MiddleName
	}
	name += " " + user.LastName

	fmt.Fprintf(s.out, "\n%s (%s)\n", name, user.ID)
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "  %s\t%s\n", label, value)
		}
	}
	row("Email", user.Email)
	row("Phone", user.Phone)
	row("Mobile", user.Mobile)
	row("Address", formatAddress(user.Address, user.City, user.State, user.ZipCode, user.Country))
	row("Status", string(user.Status))
	row("Pay type", string(user.PayType))
	row("Clock code", user.ClockCode)
	row("Start date", user.StartDate)
	row("End date", user.EndDate)
	row("Limit start time", yesNo(user.LimitStartTime))
	row("Limit end time", yesNo(user.LimitEndTime))
	row("Roles", roleNames(roles))
	row("Permissions", strings.Join(directory.EffectivePermissions(user, s.svc.Store.Roles()), ", "))
	for i, c := range []directory.EmergencyContact{user.EmergencyContact1, user.EmergencyContact2} {
		if c.FirstName == "" && c.LastName == "" {
			continue
		}
		row(fmt.Sprintf("Emergency contact %d", i+1), strings.TrimSpace(c.FirstName+" "+c.LastName)+" "+c.Phone+" "+c.Email)
	}
	_ = tw.Flush()
}

func (s *Session) renderRoles() {
	summaries := s.svc.ListRoles()
	fmt.Fprintf(s.out, "\nRoles: %d\n", len(summaries))
	if len(summaries) == 0 {
		fmt.Fprintln(s.out, "No roles defined.")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUSERS\tPERMISSIONS\tCOLOR\tDESCRIPTION")
	for _, r := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", r.ID, r.Name, r.UserCount, len(r.Permissions), r.Color, r.Description)
	}
	_ = tw.Flush()
}

func roleNames(roles []directory.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}

func formatAddress(street, city, state, zip, country string) string {
	parts := []string{}
	for _, p := range []string{street, city, strings.TrimSpace(state + " " + zip), country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
