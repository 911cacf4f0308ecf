package directory

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrInvalidTransition    = errors.New("invalid view transition")
	ErrConfirmationRequired = errors.New("destructive action requires confirmation")
)
