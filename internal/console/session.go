// Package console is a line-oriented front end for the employee directory.
// It walks the same view state machine as the web UI: a filtered list, a
// details page, user and role forms, and the role overview.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"roster/internal/domain/directory"
)

var (
	errQuit      = errors.New("quit")
	errCancelled = errors.New("cancelled")
)

type Session struct {
	svc    *directory.Service
	in     *bufio.Scanner
	out    io.Writer
	view   directory.View
	filter directory.UserFilter

	// userID is the user on the details page.
	userID string
}

func New(svc *directory.Service, in io.Reader, out io.Writer) *Session {
	return &Session{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		view:   directory.ViewList,
		filter: directory.UserFilter{Status: directory.FilterAll, Role: directory.FilterAll},
	}
}

func (s *Session) View() directory.View {
	return s.view
}

// Run reads commands until quit, end of input or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	s.render()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s> ", s.view)
		line, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		err := s.dispatch(ctx, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, io.EOF):
			return s.in.Err()
		case err != nil:
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) dispatch(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return nil
	case "help", "?":
		s.help()
		return nil
	case "quit", "exit":
		return errQuit
	}

	switch s.view {
	case directory.ViewList:
		return s.listCommand(ctx, cmd, arg)
	case directory.ViewDetails:
		return s.detailsCommand(ctx, cmd)
	case directory.ViewRoles:
		return s.rolesCommand(ctx, cmd, arg)
	}
	return fmt.Errorf("unknown command %q, type help", cmd)
}

func (s *Session) listCommand(ctx context.Context, cmd, arg string) error {
	switch cmd {
	case "list":
	case "search":
		s.filter.Search = arg
	case "status":
		value := strings.ToLower(arg)
		if value != directory.FilterAll && value != string(directory.StatusActive) && value != string(directory.StatusInactive) {
			return fmt.Errorf("status must be all, active or inactive")
		}
		s.filter.Status = value
	case "role":
		if arg == "" {
			arg = directory.FilterAll
		}
		if arg != directory.FilterAll {
			if _, ok := s.svc.Store.Role(arg); !ok {
				return directory.ErrRoleNotFound
			}
		}
		s.filter.Role = arg
	case "add":
		return s.addUser(ctx)
	case "view":
		user, err := s.lookupUser(arg)
		if err != nil {
			return err
		}
		if err := s.navigate(directory.ActionView); err != nil {
			return err
		}
		s.userID = user.ID
	case "edit":
		user, err := s.lookupUser(arg)
		if err != nil {
			return err
		}
		return s.editUser(ctx, user)
	case "delete":
		user, err := s.lookupUser(arg)
		if err != nil {
			return err
		}
		if _, err := s.deleteUser(ctx, user); err != nil {
			return err
		}
	case "roles":
		if err := s.navigate(directory.ActionManageRoles); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	s.render()
	return nil
}

func (s *Session) detailsCommand(ctx context.Context, cmd string) error {
	user, ok := s.svc.Store.User(s.userID)
	if !ok && cmd != "back" {
		_ = s.navigate(directory.ActionBack)
		s.render()
		return directory.ErrUserNotFound
	}

	switch cmd {
	case "edit":
		return s.editUser(ctx, user)
	case "delete":
		deleted, err := s.deleteUser(ctx, user)
		if err != nil {
			return err
		}
		if !deleted {
			return nil
		}
		if err := s.navigate(directory.ActionBack); err != nil {
			return err
		}
	case "back":
		if err := s.navigate(directory.ActionBack); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	s.render()
	return nil
}

func (s *Session) rolesCommand(ctx context.Context, cmd, arg string) error {
	switch cmd {
	case "list":
	case "add-role":
		return s.addRole(ctx)
	case "edit-role":
		role, ok := s.svc.Store.Role(arg)
		if !ok {
			return directory.ErrRoleNotFound
		}
		return s.editRole(ctx, role)
	case "delete-role":
		role, ok := s.svc.Store.Role(arg)
		if !ok {
			return directory.ErrRoleNotFound
		}
		if err := s.deleteRole(ctx, role); err != nil {
			return err
		}
	case "back":
		if err := s.navigate(directory.ActionBack); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	s.render()
	return nil
}

func (s *Session) navigate(action directory.Action) error {
	next, err := directory.Navigate(s.view, action)
	if err != nil {
		return err
	}
	s.view = next
	return nil
}

func (s *Session) lookupUser(id string) (directory.User, error) {
	if id == "" {
		return directory.User{}, fmt.Errorf("a user id is required")
	}
	user, ok := s.svc.Store.User(id)
	if !ok {
		return directory.User{}, directory.ErrUserNotFound
	}
	return user, nil
}

func (s *Session) deleteUser(ctx context.Context, user directory.User) (bool, error) {
	confirmed, err := s.confirm(fmt.Sprintf("Delete %s? This cannot be undone. [y/N] ", user.FullName()))
	if err != nil {
		return false, err
	}
	deleted, err := s.svc.DeleteUser(ctx, user.ID, confirmed)
	if errors.Is(err, directory.ErrConfirmationRequired) {
		fmt.Fprintln(s.out, "Delete cancelled.")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if deleted {
		fmt.Fprintf(s.out, "Deleted %s.\n", user.FullName())
	}
	return deleted, nil
}

func (s *Session) deleteRole(ctx context.Context, role directory.Role) error {
	holders := directory.CountUsersForRole(s.svc.Store.Users(), role.ID)
	confirmed, err := s.confirm(fmt.Sprintf("Delete role %s? %d user(s) will lose it. [y/N] ", role.Name, holders))
	if err != nil {
		return err
	}
	deleted, affected, err := s.svc.DeleteRole(ctx, role.ID, confirmed)
	if errors.Is(err, directory.ErrConfirmationRequired) {
		fmt.Fprintln(s.out, "Delete cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	if deleted {
		fmt.Fprintf(s.out, "Deleted role %s; removed from %d user(s).\n", role.Name, len(affected))
	}
	return nil
}

func (s *Session) confirm(question string) (bool, error) {
	fmt.Fprint(s.out, question)
	line, ok := s.readLine()
	if !ok {
		return false, io.EOF
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (s *Session) help() {
	fmt.Fprintln(s.out, "Commands:")
	switch s.view {
	case directory.ViewList:
		fmt.Fprintln(s.out, "  list                      show the filtered user list")
		fmt.Fprintln(s.out, "  search <text>             filter by name or email (empty clears)")
		fmt.Fprintln(s.out, "  status <all|active|inactive>")
		fmt.Fprintln(s.out, "  role <all|role id>")
		fmt.Fprintln(s.out, "  add                       add a user")
		fmt.Fprintln(s.out, "  view <id> | edit <id> | delete <id>")
		fmt.Fprintln(s.out, "  roles                     manage roles")
	case directory.ViewDetails:
		fmt.Fprintln(s.out, "  edit | delete | back")
	case directory.ViewRoles:
		fmt.Fprintln(s.out, "  add-role | edit-role <id> | delete-role <id> | back")
	}
	fmt.Fprintln(s.out, "  help | quit")
	fmt.Fprintln(s.out, "In forms, press enter to keep a value, '-' to clear it, ':cancel' to abandon.")
}
