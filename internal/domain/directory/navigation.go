package directory

import "fmt"

type View string

const (
	ViewList     View = "list"
	ViewAdd      View = "add"
	ViewEdit     View = "edit"
	ViewDetails  View = "view"
	ViewRoles    View = "roles"
	ViewAddRole  View = "add_role"
	ViewEditRole View = "edit_role"
)

type Action string

const (
	ActionAdd         Action = "add"
	ActionEdit        Action = "edit"
	ActionView        Action = "view"
	ActionSave        Action = "save"
	ActionCancel      Action = "cancel"
	ActionBack        Action = "back"
	ActionManageRoles Action = "manage_roles"
	ActionAddRole     Action = "add_role"
	ActionEditRole    Action = "edit_role"
)

// Forms and the details page always lead back to the list they were opened
// from.
var transitions = map[View]map[Action]View{
	ViewList: {
		ActionAdd:         ViewAdd,
		ActionEdit:        ViewEdit,
		ActionView:        ViewDetails,
		ActionManageRoles: ViewRoles,
	},
	ViewAdd: {
		ActionSave:   ViewList,
		ActionCancel: ViewList,
	},
	ViewEdit: {
		ActionSave:   ViewList,
		ActionCancel: ViewList,
	},
	ViewDetails: {
		ActionEdit:   ViewEdit,
		ActionBack:   ViewList,
		ActionCancel: ViewList,
	},
	ViewRoles: {
		ActionAddRole:  ViewAddRole,
		ActionEditRole: ViewEditRole,
		ActionBack:     ViewList,
	},
	ViewAddRole: {
		ActionSave:   ViewRoles,
		ActionCancel: ViewRoles,
	},
	ViewEditRole: {
		ActionSave:   ViewRoles,
		ActionCancel: ViewRoles,
	},
}

func Navigate(from View, action Action) (View, error) {
	next, ok := transitions[from][action]
	if !ok {
		return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
	}
	return next, nil
}

// IsForm reports whether the view edits a user or role.
func (v View) IsForm() bool {
	switch v {
	case ViewAdd, ViewEdit, ViewAddRole, ViewEditRole:
		return true
	}
	return false
}
