package directory

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the user and role collections. Every mutation replaces the
// affected slice, so slices handed out earlier are never written to.
type Store struct {
	mu          sync.RWMutex
	users       []User
	roles       []Role
	permissions []Permission
	listeners   []Listener
	seq         uint64

	// turn orders delivery so listeners see changes in commit order.
	turn      *sync.Cond
	delivered uint64

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		users:       []User{},
		roles:       []Role{},
		permissions: PermissionCatalog(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       newID,
		turn:        sync.NewCond(&sync.Mutex{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces both collections without notifying listeners.
func (s *Store) Load(users []User, roles []Role) {
	nextUsers := make([]User, 0, len(users))
	for _, u := range users {
		nextUsers = append(nextUsers, u.clone())
	}
	nextRoles := make([]Role, 0, len(roles))
	for _, r := range roles {
		nextRoles = append(nextRoles, r.clone())
	}

	s.mu.Lock()
	s.users = nextUsers
	s.roles = nextRoles
	s.mu.Unlock()
}

func (s *Store) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, len(s.users))
	for i, u := range s.users {
		out[i] = u.clone()
	}
	return out
}

func (s *Store) Roles() []Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Role, len(s.roles))
	for i, r := range s.roles {
		out[i] = r.clone()
	}
	return out
}

func (s *Store) Permissions() []Permission {
	out := make([]Permission, len(s.permissions))
	copy(out, s.permissions)
	return out
}

func (s *Store) User(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.userIndex(id); i >= 0 {
		return s.users[i].clone(), true
	}
	return User{}, false
}

func (s *Store) Role(id string) (Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.roleIndex(id); i >= 0 {
		return s.roles[i].clone(), true
	}
	return Role{}, false
}

func (s *Store) CreateUser(ctx context.Context, in UserInput) User {
	s.mu.Lock()
	now := s.now()
	user := in.toUser(s.newID(), now)
	next := make([]User, len(s.users), len(s.users)+1)
	copy(next, s.users)
	s.users = append(next, user)
	seq := s.commit()
	listeners := s.listeners
	s.mu.Unlock()

	s.notify(ctx, listeners, Change{Seq: seq, Kind: UserCreated, Users: []User{user.clone()}, At: now})
	return user.clone()
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch UserPatch) (User, error) {
	s.mu.Lock()
	i := s.userIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return User{}, ErrUserNotFound
	}
	now := s.now()
	updated := patch.Apply(s.users[i])
	updated.ID = id
	updated.UpdatedAt = now
	next := slices.Clone(s.users)
	next[i] = updated
	s.users = next
	seq := s.commit()
	listeners := s.listeners
	s.mu.Unlock()

	s.notify(ctx, listeners, Change{Seq: seq, Kind: UserUpdated, Users: []User{updated.clone()}, At: now})
	return updated.clone(), nil
}

// DeleteUser reports whether a user was removed. Missing ids are a no-op.
func (s *Store) DeleteUser(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.userIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.users = slices.Delete(slices.Clone(s.users), i, i+1)
	now := s.now()
	seq := s.commit()
	listeners := s.listeners
	s.mu.Unlock()

	s.notify(ctx, listeners, Change{Seq: seq, Kind: UserDeleted, DeletedID: id, At: now})
	return true
}

func (s *Store) CreateRole(ctx context.Context, in RoleInput) Role {
	s.mu.Lock()
	now := s.now()
	role := in.toRole(s.newID(), now)
	next := make([]Role, len(s.roles), len(s.roles)+1)
	copy(next, s.roles)
	s.roles = append(next, role)
	seq := s.commit()
	listeners := s.listeners
	s.mu.Unlock()

	s.notify(ctx, listeners, Change{Seq: seq, Kind: RoleCreated, Roles: []Role{role.clone()}, At: now})
	return role.clone()
}

// UpdateRole merges the patch onto the role. Roles carry no update
// timestamp, so CreatedAt is the only stamp kept.
func (s *Store) UpdateRole(ctx context.Context, id string, patch RolePatch) (Role, error) {
	s.mu.Lock()
	i := s.roleIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return Role{}, ErrRoleNotFound
	}
	updated := patch.Apply(s.roles[i])
	updated.ID = id
	next := slices.Clone(s.roles)
	next[i] = updated
	s.roles = next
	now := s.now()
	seq := s.commit()
	listeners := s.listeners
	s.mu.Unlock()

	s.notify(ctx, listeners, Change{Seq: seq, Kind: RoleUpdated, Roles: []Role{updated.clone()}, At: now})
	return updated.clone(), nil
}

// DeleteRole removes the role and strips its id from every user in the same
// critical section. It returns the users whose role list changed.
func (s *Store) DeleteRole(ctx context.Context, id string) (bool, []User) {
	s.mu.Lock()
	i := s.roleIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}

	nextRoles := slices.Delete(slices.Clone(s.roles), i, i+1)
	nextUsers := make([]User, len(s.users))
	var affected []User
	for j, u := range s.users {
		if !u.HasRole(id) {
			nextUsers[j] = u
			continue
		}
		stripped := u.clone()
		stripped.Roles = slices.DeleteFunc(stripped.Roles, func(roleID string) bool {
			return roleID == id
		})
		nextUsers[j] = stripped
		affected = append(affected, stripped.clone())
	}
	s.roles = nextRoles
	s.users = nextUsers
	now := s.now()
	seq := s.commit()
	listeners := s.listeners
	s.mu.Unlock()

	s.notify(ctx, listeners, Change{Seq: seq, Kind: RoleDeleted, DeletedID: id, Users: affected, At: now})
	return true, affected
}

// HasPermission resolves the user's roles to their permissions. Role ids
// that no longer exist grant nothing.
func (s *Store) HasPermission(_ context.Context, userID, permissionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.userIndex(userID)
	if i < 0 {
		return false, nil
	}
	for _, roleID := range s.users[i].Roles {
		if j := s.roleIndex(roleID); j >= 0 && s.roles[j].Grants(permissionID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) userIndex(id string) int {
	return slices.IndexFunc(s.users, func(u User) bool { return u.ID == id })
}

func (s *Store) roleIndex(id string) int {
	return slices.IndexFunc(s.roles, func(r Role) bool { return r.ID == id })
}

// commit numbers a mutation. Callers hold mu.
func (s *Store) commit() uint64 {
	s.seq++
	return s.seq
}

// notify waits until every earlier change has been delivered, then calls
// the listeners. Listeners must not mutate the store.
func (s *Store) notify(ctx context.Context, listeners []Listener, change Change) {
	s.turn.L.Lock()
	for s.delivered+1 != change.Seq {
		s.turn.Wait()
	}
	s.turn.L.Unlock()
	defer func() {
		s.turn.L.Lock()
		s.delivered = change.Seq
		s.turn.Broadcast()
		s.turn.L.Unlock()
	}()

	for _, l := range listeners {
		if err := l.Apply(ctx, change); err != nil {
			slog.Warn("directory change listener failed", "kind", change.Kind, "seq", change.Seq, "err", err)
		}
	}
}
