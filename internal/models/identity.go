package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/hardbound/stacks/internal/shared"
)

// Role names recognized by the remote library service.
const (
	RoleMember    = "member"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// Identity is the authenticated principal associated with the current session.
//
// The remote service is inconsistent about field naming ("username" vs "name",
// optional profile fields); this is the single schema every response is mapped
// into before anything downstream sees it. ID, Username and Email are required,
// everything else is optional.
type Identity struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	JoinedAt  time.Time `json:"joined_at,omitzero"`
}

// Validate checks the required identity fields and normalizes the role.
func (i *Identity) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: identity id is required", shared.ErrInvalidInput)
	}
	if i.Username == "" {
		return fmt.Errorf("%w: identity username is required", shared.ErrInvalidInput)
	}
	if i.Email == "" {
		return fmt.Errorf("%w: identity email is required", shared.ErrInvalidInput)
	}
	if i.Role == "" {
		i.Role = RoleMember
	}
	switch i.Role {
	case RoleMember, RoleLibrarian, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", shared.ErrInvalidInput, i.Role)
	}
}

// DisplayName returns the full name when profile fields are set, falling back to the username.
func (i *Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Username
	}
	return name
}

// IsStaff reports whether the principal may manage catalog entities and users.
func (i *Identity) IsStaff() bool {
	return i.Role == RoleLibrarian || i.Role == RoleAdmin
}

// Registration carries the fields submitted to the registration endpoint.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Validate checks the required registration fields.
//
// Format rules (email shape, password strength) are the form's concern; this
// only rejects fields the backend would refuse outright.
func (r *Registration) Validate() error {
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return fmt.Errorf("%w: username, email and password are required", shared.ErrInvalidInput)
	}
	return nil
}
