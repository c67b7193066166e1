// Package regen regenerates persona emails for one tenant.
//
// A run first plans every assignment in memory (no writes), then, unless it
// is a dry run, applies the changed assignments in a single transaction.
// Records the generator rejects are skipped and reported; they never abort
// the batch.
package regen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tendant/persona-idgen/pkg/domain"
	"github.com/tendant/persona-idgen/pkg/identifier"
	"github.com/tendant/persona-idgen/pkg/repository"
)

// ErrNoTenant is returned when Options names neither a tenant ID nor a slug.
var ErrNoTenant = errors.New("tenant id or slug is required")

// TenantStore resolves the tenant a batch runs for.
// *repository.TenantsRepository implements it.
type TenantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
}

// UserStore supplies the batch, the already used emails, and persists the
// result. *repository.UsersRepository implements it.
type UserStore interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID, statuses ...domain.MembershipStatus) ([]*domain.User, error)
	ListByEmailDomain(ctx context.Context, emailDomain string) ([]*domain.User, error)
	ReassignEmails(ctx context.Context, changes []repository.EmailChange) error
}

// Options controls a regeneration run.
type Options struct {
	// TenantID selects the tenant whose members are regenerated. When unset
	// the tenant is looked up by TenantSlug.
	TenantID uuid.UUID
	TenantSlug string

	// Namespace overrides the tenant's email domain.
	Namespace string

	// DryRun plans without writing.
	DryRun bool

	// RewriteUnchanged also writes assignments equal to the current email.
	RewriteUnchanged bool

	// Statuses limits the batch to members in these states; empty means all.
	Statuses []domain.MembershipStatus
}

// Service plans and applies email regeneration.
type Service struct {
	tenants TenantStore
	users   UserStore
	logger  *slog.Logger
}

// NewService creates a new regeneration service. A nil logger uses slog.Default().
func NewService(tenants TenantStore, users UserStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tenants: tenants, users: users, logger: logger}
}

// Run plans the batch and, unless opts.DryRun is set, applies it.
func (s *Service) Run(ctx context.Context, opts Options) (*Report, error) {
	report, err := s.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		s.logger.Info("dry run, no changes written", "tenant", report.Tenant)
		return report, nil
	}
	if err := s.Apply(ctx, report, opts.RewriteUnchanged); err != nil {
		return report, err
	}
	return report, nil
}

// Plan computes an email for every member of the tenant without writing.
//
// The used set starts with every email in the namespace that belongs to a
// user outside the batch, soft-deleted users included since their rows still
// hold the address. Batch members give up their current address and may be
// handed it back. A skipped member keeps its current address, so if
// that address was handed to someone else the plan is recomputed with it
// reserved.
func (s *Service) Plan(ctx context.Context, opts Options) (*Report, error) {
	tenant, err := s.loadTenant(ctx, opts)
	if err != nil {
		return nil, err
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = tenant.Namespace()
	}
	namespace = identifier.NormalizeNamespace(namespace)
	if namespace == "" {
		return nil, fmt.Errorf("tenant %q: %w", tenant.Slug, domain.ErrTenantHasNoDomain)
	}
	if err := identifier.ValidateNamespace(namespace); err != nil {
		return nil, err
	}

	batch, err := s.users.ListByTenant(ctx, tenant.ID, opts.Statuses...)
	if err != nil {
		return nil, fmt.Errorf("list users of tenant %q: %w", tenant.Slug, err)
	}
	holders, err := s.users.ListByEmailDomain(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("list users in %s: %w", namespace, err)
	}

	inBatch := make(map[uuid.UUID]bool, len(batch))
	for _, u := range batch {
		inBatch[u.ID] = true
	}
	reserved := identifier.NewSet()
	for _, u := range holders {
		email := identifier.NormalizeEmail(u.Email)
		if inBatch[u.ID] || identifier.DomainOf(email) != namespace {
			continue
		}
		reserved.Add(email)
	}

	var report *Report
	for {
		report = allocate(batch, namespace, reserved)
		if !reserveKeptEmails(report, reserved) {
			break
		}
	}
	report.Tenant = tenant.Slug
	report.DryRun = opts.DryRun

	for _, skip := range report.Skipped {
		s.logger.Warn("skipping user",
			"user_id", skip.UserID,
			"name", skip.Name,
			"reason", skip.Reason(),
			"error", skip.Err,
		)
	}
	s.logger.Info("regeneration planned",
		"tenant", report.Tenant,
		"namespace", report.Namespace,
		"reserved", len(reserved),
		"total", report.Total(),
		"changed", report.Changed(),
		"unchanged", report.Unchanged(),
		"skipped", len(report.Skipped),
	)

	return report, nil
}

func (s *Service) loadTenant(ctx context.Context, opts Options) (*domain.Tenant, error) {
	if opts.TenantID != uuid.Nil {
		tenant, err := s.tenants.GetByID(ctx, opts.TenantID)
		if err != nil {
			return nil, fmt.Errorf("load tenant %s: %w", opts.TenantID, err)
		}
		if opts.TenantSlug != "" && tenant.Slug != opts.TenantSlug {
			return nil, fmt.Errorf("tenant %s has slug %q, not %q: %w", opts.TenantID, tenant.Slug, opts.TenantSlug, domain.ErrTenantNotFound)
		}
		return tenant, nil
	}
	if opts.TenantSlug == "" {
		return nil, ErrNoTenant
	}
	tenant, err := s.tenants.GetBySlug(ctx, opts.TenantSlug)
	if err != nil {
		return nil, fmt.Errorf("load tenant %q: %w", opts.TenantSlug, err)
	}
	return tenant, nil
}

// Apply writes the planned assignments. Unchanged assignments are only
// written when rewriteUnchanged is set.
func (s *Service) Apply(ctx context.Context, report *Report, rewriteUnchanged bool) error {
	var changes []repository.EmailChange
	for _, a := range report.Assignments {
		if !a.Changed() && !rewriteUnchanged {
			continue
		}
		changes = append(changes, repository.EmailChange{UserID: a.UserID, Email: a.Email})
		s.logger.Debug("assigning email", "user_id", a.UserID, "from", a.Current, "to", a.Email)
	}

	if err := s.users.ReassignEmails(ctx, changes); err != nil {
		return fmt.Errorf("write emails for tenant %q: %w", report.Tenant, err)
	}
	report.Written = len(changes)

	s.logger.Info("regeneration applied", "tenant", report.Tenant, "written", report.Written)
	return nil
}

// allocate runs the generator over the batch against a copy of reserved.
func allocate(batch []*domain.User, namespace string, reserved identifier.Set) *Report {
	gen := identifier.NewGenerator(namespace, reserved.Clone())
	report := &Report{Namespace: namespace}

	for _, u := range batch {
		email, err := gen.Next(u.DisplayName())
		if err != nil {
			report.Skipped = append(report.Skipped, Skip{
				UserID:  u.ID,
				Name:    u.DisplayName(),
				Current: u.Email,
				Err:     err,
			})
			continue
		}
		report.Assignments = append(report.Assignments, Assignment{
			UserID:  u.ID,
			Name:    u.DisplayName(),
			Current: u.Email,
			Email:   email,
		})
	}
	return report
}

// reserveKeptEmails adds to reserved every current address of a skipped user
// that the plan handed to someone else. It reports whether anything was added.
func reserveKeptEmails(report *Report, reserved identifier.Set) bool {
	assigned := identifier.NewSet()
	for _, a := range report.Assignments {
		assigned.Add(a.Email)
	}

	added := false
	for _, skip := range report.Skipped {
		current := identifier.NormalizeEmail(skip.Current)
		if assigned.Has(current) && !reserved.Has(current) {
			reserved.Add(current)
			added = true
		}
	}
	return added
}

// Assignment is a planned email for one user.
type Assignment struct {
	UserID  uuid.UUID
	Name    string
	Current string
	Email   string
}

// Changed reports whether Email differs from the current address, ignoring case.
func (a Assignment) Changed() bool {
	return identifier.NormalizeEmail(a.Current) != a.Email
}

// Skip is a user the generator rejected. The user keeps its current email.
type Skip struct {
	UserID  uuid.UUID
	Name    string
	Current string
	Err     error
}

// Reason classifies Err for reports.
func (s Skip) Reason() string {
	switch {
	case errors.Is(s.Err, identifier.ErrInvalidName):
		return "invalid_name"
	case errors.Is(s.Err, identifier.ErrExhaustedNamespace):
		return "exhausted_namespace"
	default:
		return "error"
	}
}
