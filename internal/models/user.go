package models

import (
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// HasAdminCapability reports whether the role may perform operator actions.
func (r Role) HasAdminCapability() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type License string

const (
	LicenseFree                   License = "free"
	LicenseProfessional           License = "professional"
	LicenseProfessionalSubAccount License = "professional_sub_account"
)

func (l License) Valid() bool {
	switch l {
	case LicenseFree, LicenseProfessional, LicenseProfessionalSubAccount:
		return true
	}
	return false
}

// MinUserHumanID is the smallest human-facing user id handed out.
const MinUserHumanID int64 = 70000

// User matches the users table.
// A non-nil ParentUserID always comes with LicenseProfessionalSubAccount.
type User struct {
	ID           uuid.UUID  `json:"id"`
	HumanID      int64      `json:"human_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Password     string     `json:"-"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	License      License    `json:"license"`
	ParentUserID *uuid.UUID `json:"parent_user_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) Prepare() {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	u.Name = html.EscapeString(strings.TrimSpace(u.Name))
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.License == "" {
		u.License = LicenseFree
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsSubAccount reports whether the user is attached to a parent.
func (u *User) IsSubAccount() bool {
	return u.ParentUserID != nil
}

// Actor is the authenticated caller of an operation. Capability is resolved
// once at the edge and handed to services explicitly.
type Actor struct {
	UserID  uuid.UUID
	HumanID int64
	Role    Role
}

func ActorFor(u *User) Actor {
	return Actor{UserID: u.ID, HumanID: u.HumanID, Role: u.Role}
}

func (a Actor) IsAdmin() bool {
	return a.Role.HasAdminCapability()
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}
