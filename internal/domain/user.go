package domain

import "time"

// User is the persisted account record behind an Actor.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Roles        RoleSet
	TeamID       *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName concatenates first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
