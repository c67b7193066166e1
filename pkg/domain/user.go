package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a persona account.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      *string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// DisplayName returns the persona's name, or "" when none is recorded.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
