package identifier

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// ErrInvalidNamespace is returned when a namespace is not a usable email domain.
var ErrInvalidNamespace = errors.New("invalid namespace")

// Email validation regex (stricter than RFC 5322 for practical use)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Lowercase DNS name with at least one dot.
var domainRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)+$`)

const (
	maxEmailLength  = 254 // RFC 5321
	maxDomainLength = 253
)

// ValidateNamespace checks that namespace can serve as the domain of
// generated identifiers. Namespaces are expected in normalized (lowercase)
// form; see NormalizeNamespace.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("%w: namespace is required", ErrInvalidNamespace)
	}
	if len(namespace) > maxDomainLength {
		return fmt.Errorf("%w: %q is too long (max %d characters)", ErrInvalidNamespace, namespace, maxDomainLength)
	}
	if !domainRegex.MatchString(namespace) {
		return fmt.Errorf("%w: %q is not a lowercase domain name", ErrInvalidNamespace, namespace)
	}
	return nil
}

// NormalizeNamespace lowercases and trims a namespace, dropping a leading "@".
func NormalizeNamespace(namespace string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(namespace)), "@")
}

// ValidateEmail validates an email address for format and length.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address is required")
	}

	if len(email) > maxEmailLength {
		return fmt.Errorf("email address is too long (max %d characters)", maxEmailLength)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address format")
	}

	if !emailRegex.MatchString(addr.Address) {
		return fmt.Errorf("invalid email address format")
	}

	return nil
}

// NormalizeEmail normalizes an email address by lowercasing and trimming.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DomainOf extracts the domain from an email address, or "" when email has
// no single "@".
func DomainOf(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
