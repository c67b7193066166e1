package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tendant/persona-idgen/pkg/domain"
)

// parkedDomain receives placeholder emails while a batch of addresses is
// swapped. The .invalid TLD is reserved and never collides with real data.
const parkedDomain = "regen.invalid"

// UsersRepository handles user persistence.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// EmailChange assigns Email to the user identified by UserID.
type EmailChange struct {
	UserID uuid.UUID
	Email  string
}

// ListByTenant lists the live users of a tenant in creation order.
// When statuses is empty every membership status is included.
func (r *UsersRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, statuses ...domain.MembershipStatus) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.email, u.name, u.created_at, u.updated_at, u.deleted_at
		FROM users u
		JOIN memberships m ON m.user_id = u.id AND m.deleted_at IS NULL
		WHERE m.tenant_id = $1
		  AND u.deleted_at IS NULL
		  AND (cardinality($2::text[]) = 0 OR m.status = ANY($2::text[]))
		ORDER BY u.created_at, u.id
	`
	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}

	rows, err := r.db.QueryContext(ctx, query, tenantID, pq.Array(filter))
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// ListByEmailDomain lists users whose email belongs to domain, compared
// case-insensitively. Soft-deleted users are included: the unique email index
// covers them, so their addresses stay taken.
func (r *UsersRepository) ListByEmailDomain(ctx context.Context, emailDomain string) ([]*domain.User, error) {
	query := `
		SELECT id, email, name, created_at, updated_at, deleted_at
		FROM users
		WHERE lower(split_part(email, '@', 2)) = lower($1)
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, emailDomain)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// UpdateEmailTx sets a user's email using q, which may be a transaction.
func (r *UsersRepository) UpdateEmailTx(ctx context.Context, q Querier, userID uuid.UUID, email string) error {
	query := `
		UPDATE users
		SET email = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := q.ExecContext(ctx, query, userID, email)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ReassignEmails applies changes in a single transaction. Emails may move
// between users of the batch; see ReassignEmailsTx.
func (r *UsersRepository) ReassignEmails(ctx context.Context, changes []EmailChange) error {
	if len(changes) == 0 {
		return nil
	}
	return Tx(ctx, r.db, func(tx *sql.Tx) error {
		return r.ReassignEmailsTx(ctx, tx, changes)
	})
}

// ReassignEmailsTx first parks every changed user on a placeholder address,
// then writes the final emails. The unique email constraint is checked per
// statement, so a direct swap (A takes B's address while B takes A's) would
// otherwise fail halfway.
func (r *UsersRepository) ReassignEmailsTx(ctx context.Context, q Querier, changes []EmailChange) error {
	for _, c := range changes {
		if err := r.UpdateEmailTx(ctx, q, c.UserID, ParkedEmail(c.UserID)); err != nil {
			return fmt.Errorf("park user %s: %w", c.UserID, err)
		}
	}
	for _, c := range changes {
		if err := r.UpdateEmailTx(ctx, q, c.UserID, c.Email); err != nil {
			return fmt.Errorf("assign %s to user %s: %w", c.Email, c.UserID, err)
		}
	}
	return nil
}

// ParkedEmail returns the placeholder address used for userID during a swap.
func ParkedEmail(userID uuid.UUID) string {
	return userID.String() + "@" + parkedDomain
}

func scanUsers(rows *sql.Rows) ([]*domain.User, error) {
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Name,
			&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
