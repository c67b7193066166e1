package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant represents an organization. Persona emails are unique per email
// domain, and a tenant usually owns one.
type Tenant struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	EmailDomain *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Namespace returns the tenant's email domain, or "" when none is set.
func (t *Tenant) Namespace() string {
	if t.EmailDomain == nil {
		return ""
	}
	return strings.TrimSpace(*t.EmailDomain)
}
