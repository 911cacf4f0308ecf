package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"roster/internal/domain/directory"
)

const (
	cancelInput = ":cancel"
	clearInput  = "-"
)

// formField binds one prompt to a value in the form state. set rejects
// input the prompt should ask for again.
type formField struct {
	key   string
	label string
	get   func() string
	set   func(string) error
}

func (s *Session) addUser(ctx context.Context) error {
	if err := s.navigate(directory.ActionAdd); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "New employee")
	return s.finishUserForm(ctx, "", directory.NewUserInput())
}

func (s *Session) editUser(ctx context.Context, user directory.User) error {
	if err := s.navigate(directory.ActionEdit); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Editing %s\n", user.FullName())
	return s.finishUserForm(ctx, user.ID, directory.InputFromUser(user))
}

func (s *Session) finishUserForm(ctx context.Context, id string, in directory.UserInput) error {
	user, err := s.runUserForm(ctx, id, in)
	if errors.Is(err, errCancelled) {
		fmt.Fprintln(s.out, "Changes discarded.")
		return s.leaveForm(directory.ActionCancel)
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			_ = s.leaveForm(directory.ActionCancel)
		}
		return err
	}
	fmt.Fprintf(s.out, "Saved %s (%s).\n", user.FullName(), user.ID)
	return s.leaveForm(directory.ActionSave)
}

func (s *Session) runUserForm(ctx context.Context, id string, in directory.UserInput) (directory.User, error) {
	all := s.userFields(&in)
	fields := all
	for {
		for _, f := range fields {
			if err := s.ask(f); err != nil {
				return directory.User{}, err
			}
		}
		if len(fields) == len(all) {
			if err := s.askContacts(&in); err != nil {
				return directory.User{}, err
			}
		}

		user, err := s.svc.SaveUser(ctx, id, in)
		var fieldErrs directory.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return user, err
		}
		s.printFieldErrors(fieldErrs)
		if fields = failing(all, fieldErrs); len(fields) == 0 {
			fields = all
		}
	}
}

func (s *Session) askContacts(in *directory.UserInput) error {
	contacts := []*directory.EmergencyContact{&in.EmergencyContact1, &in.EmergencyContact2}
	for i, c := range contacts {
		label := fmt.Sprintf("emergency contact %d", i+1)
		if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
			label += " (" + name + ")"
		}
		edit, err := s.confirm("Edit " + label + "? [y/N] ")
		if err != nil {
			return err
		}
		if !edit {
			continue
		}
		for _, f := range contactFields(c) {
			if err := s.ask(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) addRole(ctx context.Context) error {
	if err := s.navigate(directory.ActionAddRole); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "New role")
	return s.finishRoleForm(ctx, "", directory.NewRoleInput())
}

func (s *Session) editRole(ctx context.Context, role directory.Role) error {
	if err := s.navigate(directory.ActionEditRole); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Editing role %s\n", role.Name)
	return s.finishRoleForm(ctx, role.ID, directory.InputFromRole(role))
}

func (s *Session) finishRoleForm(ctx context.Context, id string, in directory.RoleInput) error {
	s.printPermissionCatalog()
	all := s.roleFields(&in)
	fields := all
	for {
		for _, f := range fields {
			if err := s.ask(f); err != nil {
				if errors.Is(err, errCancelled) {
					fmt.Fprintln(s.out, "Changes discarded.")
					return s.leaveForm(directory.ActionCancel)
				}
				return err
			}
		}

		role, err := s.svc.SaveRole(ctx, id, in)
		var fieldErrs directory.FieldErrors
		if errors.As(err, &fieldErrs) {
			s.printFieldErrors(fieldErrs)
			if fields = failing(all, fieldErrs); len(fields) == 0 {
				fields = all
			}
			continue
		}
		if err != nil {
			_ = s.leaveForm(directory.ActionCancel)
			return err
		}
		fmt.Fprintf(s.out, "Saved role %s (%s).\n", role.Name, role.ID)
		return s.leaveForm(directory.ActionSave)
	}
}

func (s *Session) leaveForm(action directory.Action) error {
	if err := s.navigate(action); err != nil {
		return err
	}
	s.render()
	return nil
}

// ask prompts until the field accepts the answer. An empty answer keeps
// the current value.
func (s *Session) ask(f formField) error {
	for {
		current := f.get()
		if current != "" {
			fmt.Fprintf(s.out, "%s [%s]: ", f.label, current)
		} else {
			fmt.Fprintf(s.out, "%s: ", f.label)
		}
		line, ok := s.readLine()
		switch {
		case !ok:
			return io.EOF
		case line == cancelInput:
			return errCancelled
		case line == "":
			return nil
		case line == clearInput:
			line = ""
		}
		if err := f.set(line); err != nil {
			fmt.Fprintf(s.out, "  %v\n", err)
			continue
		}
		return nil
	}
}

func (s *Session) printFieldErrors(errs directory.FieldErrors) {
	fmt.Fprintln(s.out, "Please fix the following:")
	for _, field := range errs.Fields() {
		fmt.Fprintf(s.out, "  %s: %s\n", field, errs[field])
	}
}

func (s *Session) printPermissionCatalog() {
	fmt.Fprintln(s.out, "Available permissions:")
	for _, group := range directory.PermissionsByCategory(s.svc.Permissions()) {
		fmt.Fprintf(s.out, "  %s\n", group.Category)
		for _, perm := range group.Permissions {
			fmt.Fprintf(s.out, "    %-22s %s\n", perm.ID, perm.Name)
		}
	}
}

func failing(fields []formField, errs directory.FieldErrors) []formField {
	out := make([]formField, 0, len(errs))
	for _, f := range fields {
		if _, bad := errs[f.key]; bad {
			out = append(out, f)
		}
	}
	return out
}

func (s *Session) userFields(in *directory.UserInput) []formField {
	return []formField{
		textField("firstName", "First name", &in.FirstName),
		textField("middleName", "Middle name", &in.MiddleName),
		textField("lastName", "Last name", &in.LastName),
		textField("email", "Email", &in.Email),
		phoneField("phone", "Phone", &in.Phone),
		phoneField("mobile", "Mobile", &in.Mobile),
		textField("address", "Address", &in.Address),
		textField("city", "City", &in.City),
		textField("state", "State", &in.State),
		textField("zipCode", "Zip code", &in.ZipCode),
		textField("country", "Country", &in.Country),
		dateField("startDate", "Start date (YYYY-MM-DD)", &in.StartDate),
		dateField("endDate", "End date (YYYY-MM-DD)", &in.EndDate),
		{
			key:   "status",
			label: "Status (active/inactive)",
			get:   func() string { return string(in.Status) },
			set: func(v string) error {
				switch directory.Status(strings.ToLower(v)) {
				case directory.StatusActive, directory.StatusInactive:
					in.Status = directory.Status(strings.ToLower(v))
					return nil
				}
				return fmt.Errorf("status must be active or inactive")
			},
		},
		{
			key:   "payType",
			label: "Pay type (hourly/salary)",
			get:   func() string { return string(in.PayType) },
			set: func(v string) error {
				switch directory.PayType(strings.ToLower(v)) {
				case directory.PayTypeHourly, directory.PayTypeSalary:
					in.PayType = directory.PayType(strings.ToLower(v))
					return nil
				}
				return fmt.Errorf("pay type must be hourly or salary")
			},
		},
		textField("clockCode", "Clock code", &in.ClockCode),
		flagField("limitStartTime", "Limit start time (y/n)", &in.LimitStartTime),
		flagField("limitEndTime", "Limit end time (y/n)", &in.LimitEndTime),
		s.rolesField(in),
	}
}

func (s *Session) rolesField(in *directory.UserInput) formField {
	roles := s.svc.Store.Roles()
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.ID+"="+r.Name)
	}
	return formField{
		key:   "roles",
		label: "Roles, comma separated (" + strings.Join(names, ", ") + ")",
		get:   func() string { return strings.Join(in.Roles, ",") },
		set: func(v string) error {
			ids := splitList(v)
			for _, id := range ids {
				if _, ok := s.svc.Store.Role(id); !ok {
					return fmt.Errorf("unknown role %q", id)
				}
			}
			in.Roles = ids
			return nil
		},
	}
}

func (s *Session) roleFields(in *directory.RoleInput) []formField {
	return []formField{
		textField("name", "Name", &in.Name),
		textField("description", "Description", &in.Description),
		textField("color", "Color", &in.Color),
		{
			key:   "permissions",
			label: "Permissions, comma separated",
			get:   func() string { return strings.Join(in.Permissions, ",") },
			set: func(v string) error {
				ids := splitList(v)
				for _, id := range ids {
					if _, ok := directory.LookupPermission(id); !ok {
						return fmt.Errorf("unknown permission %q", id)
					}
				}
				in.Permissions = ids
				return nil
			},
		},
	}
}

func contactFields(c *directory.EmergencyContact) []formField {
	return []formField{
		textField("firstName", "  First name", &c.FirstName),
		textField("middleName", "  Middle name", &c.MiddleName),
		textField("lastName", "  Last name", &c.LastName),
		textField("email", "  Email", &c.Email),
		phoneField("phone", "  Phone", &c.Phone),
		phoneField("mobile", "  Mobile", &c.Mobile),
		textField("address", "  Address", &c.Address),
		textField("city", "  City", &c.City),
		textField("state", "  State", &c.State),
		textField("zipCode", "  Zip code", &c.ZipCode),
		textField("country", "  Country", &c.Country),
	}
}

func textField(key, label string, dst *string) formField {
	return formField{
		key:   key,
		label: label,
		get:   func() string { return *dst },
		set:   func(v string) error { *dst = v; return nil },
	}
}

func phoneField(key, label string, dst *string) formField {
	return formField{
		key:   key,
		label: label,
		get:   func() string { return *dst },
		set:   func(v string) error { *dst = directory.FormatPhone(v); return nil },
	}
}

func dateField(key, label string, dst *string) formField {
	return formField{
		key:   key,
		label: label,
		get:   func() string { return *dst },
		set: func(v string) error {
			if !directory.ValidDate(v) {
				return fmt.Errorf("dates use YYYY-MM-DD")
			}
			*dst = v
			return nil
		},
	}
}

func flagField(key, label string, dst *bool) formField {
	return formField{
		key:   key,
		label: label,
		get: func() string {
			if *dst {
				return "y"
			}
			return "n"
		},
		set: func(v string) error {
			switch strings.ToLower(v) {
			case "y", "yes":
				*dst = true
			case "n", "no", "":
				*dst = false
			default:
				return fmt.Errorf("answer y or n")
			}
			return nil
		},
	}
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
