package entity

import (
	"strings"
	"time"
)

// User is the identity record.
// Password holds a bcrypt hash and never leaves the service layer.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "first last", falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Profile extends a User one-to-one with role and contact details.
type Profile struct {
	UserID    string
	Role      Role
	Phone     string
	Bio       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Profile) IsAgent() bool { return p != nil && p.Role == RoleAgent }
func (p *Profile) IsBuyer() bool { return p != nil && p.Role == RoleBuyer }

// Account is a User together with its Profile. Users are only ever
// created through NewAccount so the profile exists from the start.
type Account struct {
	User    User
	Profile Profile
}

// NewAccount builds an account whose profile carries the given role.
// An invalid role falls back to buyer.
func NewAccount(u User, role Role) *Account {
	if !role.Valid() {
		role = RoleBuyer
	}
	return &Account{
		User:    u,
		Profile: Profile{UserID: u.ID, Role: role},
	}
}

func (a *Account) ID() string { return a.User.ID }
