package directory

import (
	"slices"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type PayType string

const (
	PayTypeHourly PayType = "hourly"
	PayTypeSalary PayType = "salary"
)

// DefaultCountry prefills new addresses and emergency contacts.
const DefaultCountry = "USA"

type EmergencyContact struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile,omitempty"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zipCode,omitempty"`
	Country    string `json:"country"`
}

type User struct {
	ID                string           `json:"id"`
	FirstName         string           `json:"firstName"`
	MiddleName        string           `json:"middleName,omitempty"`
	LastName          string           `json:"lastName"`
	Email             string           `json:"email"`
	Mobile            string           `json:"mobile,omitempty"`
	Phone             string           `json:"phone"`
	Address           string           `json:"address"`
	City              string           `json:"city"`
	State             string           `json:"state"`
	ZipCode           string           `json:"zipCode,omitempty"`
	Country           string           `json:"country"`
	StartDate         string           `json:"startDate"`
	EndDate           string           `json:"endDate,omitempty"`
	Status            Status           `json:"status"`
	PayType           PayType          `json:"payType"`
	ClockCode         string           `json:"clockCode"`
	LimitStartTime    bool             `json:"limitStartTime"`
	LimitEndTime      bool             `json:"limitEndTime"`
	EmergencyContact1 EmergencyContact `json:"emergencyContact1"`
	EmergencyContact2 EmergencyContact `json:"emergencyContact2"`
	Roles             []string         `json:"roles"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// FullName is the "<first> <last>" form used for search and display.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u User) HasRole(roleID string) bool {
	return slices.Contains(u.Roles, roleID)
}

func (u User) clone() User {
	u.Roles = slices.Clone(u.Roles)
	if u.Roles == nil {
		u.Roles = []string{}
	}
	return u
}

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (r Role) Grants(permissionID string) bool {
	return slices.Contains(r.Permissions, permissionID)
}

func (r Role) clone() Role {
	r.Permissions = slices.Clone(r.Permissions)
	if r.Permissions == nil {
		r.Permissions = []string{}
	}
	return r
}

// UserInput is the full state of the employee form.
type UserInput struct {
	FirstName         string           `json:"firstName"`
	MiddleName        string           `json:"middleName"`
	LastName          string           `json:"lastName"`
	Email             string           `json:"email"`
	Mobile            string           `json:"mobile"`
	Phone             string           `json:"phone"`
	Address           string           `json:"address"`
	City              string           `json:"city"`
	State             string           `json:"state"`
	ZipCode           string           `json:"zipCode"`
	Country           string           `json:"country"`
	StartDate         string           `json:"startDate"`
	EndDate           string           `json:"endDate"`
	Status            Status           `json:"status"`
	PayType           PayType          `json:"payType"`
	ClockCode         string           `json:"clockCode"`
	LimitStartTime    bool             `json:"limitStartTime"`
	LimitEndTime      bool             `json:"limitEndTime"`
	EmergencyContact1 EmergencyContact `json:"emergencyContact1"`
	EmergencyContact2 EmergencyContact `json:"emergencyContact2"`
	Roles             []string         `json:"roles"`
}

// NewUserInput returns the blank form defaults.
func NewUserInput() UserInput {
	return UserInput{
		Country:           DefaultCountry,
		Status:            StatusActive,
		PayType:           PayTypeHourly,
		EmergencyContact1: EmergencyContact{Country: DefaultCountry},
		EmergencyContact2: EmergencyContact{Country: DefaultCountry},
		Roles:             []string{},
	}
}

// InputFromUser loads an existing record into form state.
func InputFromUser(u User) UserInput {
	return UserInput{
		FirstName:         u.FirstName,
		MiddleName:        u.MiddleName,
		LastName:          u.LastName,
		Email:             u.Email,
		Mobile:            u.Mobile,
		Phone:             u.Phone,
		Address:           u.Address,
		City:              u.City,
		State:             u.State,
		ZipCode:           u.ZipCode,
		Country:           u.Country,
		StartDate:         u.StartDate,
		EndDate:           u.EndDate,
		Status:            u.Status,
		PayType:           u.PayType,
		ClockCode:         u.ClockCode,
		LimitStartTime:    u.LimitStartTime,
		LimitEndTime:      u.LimitEndTime,
		EmergencyContact1: u.EmergencyContact1,
		EmergencyContact2: u.EmergencyContact2,
		Roles:             slices.Clone(u.Roles),
	}
}

func (in UserInput) toUser(id string, now time.Time) User {
	u := User{
		ID:                id,
		FirstName:         in.FirstName,
		MiddleName:        in.MiddleName,
		LastName:          in.LastName,
		Email:             in.Email,
		Mobile:            in.Mobile,
		Phone:             in.Phone,
		Address:           in.Address,
		City:              in.City,
		State:             in.State,
		ZipCode:           in.ZipCode,
		Country:           in.Country,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		Status:            in.Status,
		PayType:           in.PayType,
		ClockCode:         in.ClockCode,
		LimitStartTime:    in.LimitStartTime,
		LimitEndTime:      in.LimitEndTime,
		EmergencyContact1: in.EmergencyContact1,
		EmergencyContact2: in.EmergencyContact2,
		Roles:             in.Roles,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return u.clone()
}

// Patch converts a complete form into a patch that overwrites every field.
func (in UserInput) Patch() UserPatch {
	roles := slices.Clone(in.Roles)
	return UserPatch{
		FirstName:         &in.FirstName,
		MiddleName:        &in.MiddleName,
		LastName:          &in.LastName,
		Email:             &in.Email,
		Mobile:            &in.Mobile,
		Phone:             &in.Phone,
		Address:           &in.Address,
		City:              &in.City,
		State:             &in.State,
		ZipCode:           &in.ZipCode,
		Country:           &in.Country,
		StartDate:         &in.StartDate,
		EndDate:           &in.EndDate,
		Status:            &in.Status,
		PayType:           &in.PayType,
		ClockCode:         &in.ClockCode,
		LimitStartTime:    &in.LimitStartTime,
		LimitEndTime:      &in.LimitEndTime,
		EmergencyContact1: &in.EmergencyContact1,
		EmergencyContact2: &in.EmergencyContact2,
		Roles:             &roles,
	}
}

// UserPatch carries the fields to merge onto an existing user. Nil fields
// are left untouched.
type UserPatch struct {
	FirstName         *string           `json:"firstName,omitempty"`
	MiddleName        *string           `json:"middleName,omitempty"`
	LastName          *string           `json:"lastName,omitempty"`
	Email             *string           `json:"email,omitempty"`
	Mobile            *string           `json:"mobile,omitempty"`
	Phone             *string           `json:"phone,omitempty"`
	Address           *string           `json:"address,omitempty"`
	City              *string           `json:"city,omitempty"`
	State             *string           `json:"state,omitempty"`
	ZipCode           *string           `json:"zipCode,omitempty"`
	Country           *string           `json:"country,omitempty"`
	StartDate         *string           `json:"startDate,omitempty"`
	EndDate           *string           `json:"endDate,omitempty"`
	Status            *Status           `json:"status,omitempty"`
	PayType           *PayType          `json:"payType,omitempty"`
	ClockCode         *string           `json:"clockCode,omitempty"`
	LimitStartTime    *bool             `json:"limitStartTime,omitempty"`
	LimitEndTime      *bool             `json:"limitEndTime,omitempty"`
	EmergencyContact1 *EmergencyContact `json:"emergencyContact1,omitempty"`
	EmergencyContact2 *EmergencyContact `json:"emergencyContact2,omitempty"`
	Roles             *[]string         `json:"roles,omitempty"`
}

// Apply returns u with the patch merged in. u is not modified.
func (p UserPatch) Apply(u User) User {
	u = u.clone()
	setString(&u.FirstName, p.FirstName)
	setString(&u.MiddleName, p.MiddleName)
	setString(&u.LastName, p.LastName)
	setString(&u.Email, p.Email)
	setString(&u.Mobile, p.Mobile)
	setString(&u.Phone, p.Phone)
	setString(&u.Address, p.Address)
	setString(&u.City, p.City)
	setString(&u.State, p.State)
	setString(&u.ZipCode, p.ZipCode)
	setString(&u.Country, p.Country)
	setString(&u.StartDate, p.StartDate)
	setString(&u.EndDate, p.EndDate)
	setString(&u.ClockCode, p.ClockCode)
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.PayType != nil {
		u.PayType = *p.PayType
	}
	if p.LimitStartTime != nil {
		u.LimitStartTime = *p.LimitStartTime
	}
	if p.LimitEndTime != nil {
		u.LimitEndTime = *p.LimitEndTime
	}
	if p.EmergencyContact1 != nil {
		u.EmergencyContact1 = *p.EmergencyContact1
	}
	if p.EmergencyContact2 != nil {
		u.EmergencyContact2 = *p.EmergencyContact2
	}
	if p.Roles != nil {
		u.Roles = slices.Clone(*p.Roles)
		if u.Roles == nil {
			u.Roles = []string{}
		}
	}
	return u
}

// RoleInput is the full state of the role form.
type RoleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
}

// DefaultRoleColor prefills the role form.
const DefaultRoleColor = "#2563eb"

func NewRoleInput() RoleInput {
	return RoleInput{Color: DefaultRoleColor, Permissions: []string{}}
}

func InputFromRole(r Role) RoleInput {
	return RoleInput{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Permissions: slices.Clone(r.Permissions),
	}
}

func (in RoleInput) toRole(id string, now time.Time) Role {
	r := Role{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Permissions: in.Permissions,
		CreatedAt:   now,
	}
	return r.clone()
}

func (in RoleInput) Patch() RolePatch {
	perms := slices.Clone(in.Permissions)
	return RolePatch{
		Name:        &in.Name,
		Description: &in.Description,
		Color:       &in.Color,
		Permissions: &perms,
	}
}

type RolePatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

func (p RolePatch) Apply(r Role) Role {
	r = r.clone()
	setString(&r.Name, p.Name)
	setString(&r.Description, p.Description)
	setString(&r.Color, p.Color)
	if p.Permissions != nil {
		r.Permissions = slices.Clone(*p.Permissions)
		if r.Permissions == nil {
			r.Permissions = []string{}
		}
	}
	return r
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}
