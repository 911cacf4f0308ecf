package directory

import "context"

// Service runs form validation in front of the store mutators: a form with
// field errors never reaches the store.
type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Permissions() []Permission {
	return s.Store.Permissions()
}

func (s *Service) ListUsers(filter UserFilter) []User {
	return FilterUsers(s.Store.Users(), filter)
}

func (s *Service) ListRoles() []RoleSummary {
	return SummarizeRoles(s.Store.Roles(), s.Store.Users())
}

// UserDetails returns the user with its resolved roles.
func (s *Service) UserDetails(id string) (User, []Role, error) {
	user, ok := s.Store.User(id)
	if !ok {
		return User{}, nil, ErrUserNotFound
	}
	return user, ResolveRoles(user, s.Store.Roles()), nil
}

func (s *Service) StatusCounts() StatusCounts {
	return CountByStatus(s.Store.Users())
}

// SaveUser creates a user when id is empty and otherwise overwrites the
// existing record with the submitted form.
func (s *Service) SaveUser(ctx context.Context, id string, in UserInput) (User, error) {
	in = normalizeUserInput(in)
	if errs := ValidateUserForm(in); len(errs) > 0 {
		return User{}, errs
	}
	if id == "" {
		return s.Store.CreateUser(ctx, in), nil
	}
	return s.Store.UpdateUser(ctx, id, in.Patch())
}

// PatchUser merges a partial update and validates the merged form before
// writing it.
func (s *Service) PatchUser(ctx context.Context, id string, patch UserPatch) (User, error) {
	existing, ok := s.Store.User(id)
	if !ok {
		return User{}, ErrUserNotFound
	}
	if errs := ValidateUserForm(InputFromUser(patch.Apply(existing))); len(errs) > 0 {
		return User{}, errs
	}
	return s.Store.UpdateUser(ctx, id, patch)
}

func (s *Service) DeleteUser(ctx context.Context, id string, confirmed bool) (bool, error) {
	if !confirmed {
		return false, ErrConfirmationRequired
	}
	return s.Store.DeleteUser(ctx, id), nil
}

func (s *Service) SaveRole(ctx context.Context, id string, in RoleInput) (Role, error) {
	if errs := ValidateRoleForm(in); len(errs) > 0 {
		return Role{}, errs
	}
	if id == "" {
		return s.Store.CreateRole(ctx, in), nil
	}
	return s.Store.UpdateRole(ctx, id, in.Patch())
}

func (s *Service) PatchRole(ctx context.Context, id string, patch RolePatch) (Role, error) {
	existing, ok := s.Store.Role(id)
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	if errs := ValidateRoleForm(InputFromRole(patch.Apply(existing))); len(errs) > 0 {
		return Role{}, errs
	}
	return s.Store.UpdateRole(ctx, id, patch)
}

// DeleteRole removes the role and strips it from every user holding it.
func (s *Service) DeleteRole(ctx context.Context, id string, confirmed bool) (bool, []User, error) {
	if !confirmed {
		return false, nil, ErrConfirmationRequired
	}
	removed, affected := s.Store.DeleteRole(ctx, id)
	return removed, affected, nil
}

func normalizeUserInput(in UserInput) UserInput {
	if in.Status == "" {
		in.Status = StatusActive
	}
	if in.PayType == "" {
		in.PayType = PayTypeHourly
	}
	if in.Roles == nil {
		in.Roles = []string{}
	}
	return in
}
