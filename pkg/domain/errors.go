package domain

import "errors"

// Lookup errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")
)

// Tenant configuration errors
var (
	ErrTenantHasNoDomain = errors.New("tenant has no email domain")
)
