package shared

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"roster/internal/domain/directory"
	"roster/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects every problem with a payload so the client can fix
// them in one round trip.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	if reason = strings.TrimSpace(reason); reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// OneOf matches exactly and accepts an empty value; the form rules decide
// whether the field is mandatory.
func (v *Validator) OneOf(field, value string, allowed ...string) {
	value = strings.TrimSpace(value)
	if value == "" || slices.Contains(allowed, value) {
		return
	}
	v.Add(field, "must be one of: "+strings.Join(allowed, ", "))
}

// Date accepts an empty value.
func (v *Validator) Date(field, value string) {
	if !directory.ValidDate(value) {
		v.Add(field, "must be a date in YYYY-MM-DD format")
	}
}

// Form copies the directory form errors.
func (v *Validator) Form(errs directory.FieldErrors) {
	for _, field := range errs.Fields() {
		v.Add(field, errs[field])
	}
}

func (v *Validator) Empty() bool {
	return len(v.issues) == 0
}

// Issues returns the collected problems ordered by field.
func (v *Validator) Issues() []ValidationIssue {
	out := slices.Clone(v.issues)
	slices.SortStableFunc(out, func(a, b ValidationIssue) int {
		return cmp.Or(strings.Compare(a.Field, b.Field), strings.Compare(a.Reason, b.Reason))
	})
	return out
}

// Reject writes a validation_error response when any issue was collected.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if v.Empty() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}
