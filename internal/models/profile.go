package models

import "time"

// Role is the editorial role of a profile.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// Roles lists the roles in the order the user form offers them.
var Roles = []Role{RoleAdmin, RoleEditor, RoleAuthor}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Profile is the public record of a user account.
type Profile struct {
	ID        string
	Email     string
	FullName  string
	Role      Role
	AvatarURL string
	CreatedAt time.Time
}

// ProfileInput carries the fields an admin may change on a profile.
type ProfileInput struct {
	FullName string
	Role     Role
}

// NewUser describes an account to create.
type NewUser struct {
	Email    string
	Password string
	FullName string
	Role     Role
}

// Credentials are the email/password pair used to sign in.
type Credentials struct {
	Email    string
	Password string
}
