package directory

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the form representation of start and end dates.
const DateLayout = time.DateOnly

// ValidDate reports whether value is empty or a calendar date in DateLayout.
func ValidDate(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the failing field names in sorted order.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (e FieldErrors) required(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		e[field] = message
	}
}

func ValidateUserForm(in UserInput) FieldErrors {
	errs := FieldErrors{}
	errs.required("firstName", in.FirstName, "First name is required")
	errs.required("lastName", in.LastName, "Last name is required")
	errs.required("email", in.Email, "Email is required")
	errs.required("phone", in.Phone, "Phone is required")
	errs.required("address", in.Address, "Address is required")
	errs.required("city", in.City, "City is required")
	errs.required("state", in.State, "State is required")
	errs.required("country", in.Country, "Country is required")
	errs.required("startDate", in.StartDate, "Start date is required")
	errs.required("clockCode", in.ClockCode, "Clock code is required")
	if len(in.Roles) == 0 {
		errs["roles"] = "At least one role must be assigned"
	}
	return errs
}

func ValidateRoleForm(in RoleInput) FieldErrors {
	errs := FieldErrors{}
	errs.required("name", in.Name, "Role name is required")
	errs.required("description", in.Description, "Description is required")
	errs.required("color", in.Color, "Color is required")
	if len(in.Permissions) == 0 {
		errs["permissions"] = "At least one permission must be selected"
	}
	return errs
}
