package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/persona-idgen/pkg/domain"
)

// Config holds application configuration.
type Config struct {
	// Database
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Batch. TenantID, when set, takes precedence over TenantSlug.
	TenantID         uuid.UUID
	TenantSlug       string
	EmailDomain      string
	DryRun           bool
	RewriteUnchanged bool
	RunMigrations    bool

	// MembershipStatuses limits the batch to members in these states.
	// Empty means every member.
	MembershipStatuses []domain.MembershipStatus

	// Logging
	LogLevel slog.Level
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Database defaults (matches podman setup: make postgres-start)
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnvInt("DB_PORT", 25432),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "personas"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		TenantSlug:       getEnv("TENANT_SLUG", ""),
		EmailDomain:      getEnv("EMAIL_DOMAIN", ""),
		DryRun:           getEnvBool("DRY_RUN", true),
		RewriteUnchanged: getEnvBool("REWRITE_UNCHANGED", false),
		RunMigrations:    getEnvBool("RUN_MIGRATIONS", false),
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	statuses, err := parseStatuses(getEnv("MEMBERSHIP_STATUSES", ""))
	if err != nil {
		return nil, err
	}
	cfg.MembershipStatuses = statuses

	if id := getEnv("TENANT_ID", ""); id != "" {
		tenantID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid TENANT_ID %q: %w", id, err)
		}
		cfg.TenantID = tenantID
	}

	if cfg.TenantSlug == "" && cfg.TenantID == uuid.Nil {
		return nil, fmt.Errorf("TENANT_SLUG or TENANT_ID is required")
	}

	return cfg, nil
}

// HasDomainOverride returns true if EMAIL_DOMAIN replaces the tenant's domain.
func (c *Config) HasDomainOverride() bool {
	return c.EmailDomain != ""
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func parseStatuses(s string) ([]domain.MembershipStatus, error) {
	var statuses []domain.MembershipStatus
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		status := domain.MembershipStatus(part)
		switch status {
		case domain.MembershipStatusInvited, domain.MembershipStatusActive, domain.MembershipStatusSuspended:
			statuses = append(statuses, status)
		default:
			return nil, fmt.Errorf("invalid MEMBERSHIP_STATUSES entry %q", part)
		}
	}
	return statuses, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
