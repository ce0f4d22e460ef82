package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
)

const contributionColumns = `id, user_id, amount, memo, status, contribution_date,
	confirmed_by, confirmed_at, denied_by, denied_at, deleted_by, deleted_at,
	entry_id, created_at, updated_at`

// ContributionRepository implements usecase.ContributionRepository.
type ContributionRepository struct {
	pool *pgxpool.Pool
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(pool *pgxpool.Pool) *ContributionRepository {
	return &ContributionRepository{pool: pool}
}

// Create inserts a pending contribution.
func (r *ContributionRepository) Create(ctx context.Context, contribution *domain.Contribution) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contributions (id, user_id, amount, memo, status, contribution_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		contribution.ID,
		contribution.UserID,
		decimalToNumeric(contribution.Amount),
		contribution.Memo,
		string(contribution.Status),
		timeToPgTimestamptz(contribution.ContributionDate),
		timeToPgTimestamptz(contribution.CreatedAt),
		timeToPgTimestamptz(contribution.UpdatedAt),
	)

	return err
}

// GetByID retrieves a contribution by ID.
func (r *ContributionRepository) GetByID(ctx context.Context, id string) (*domain.Contribution, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contributionColumns+` FROM contributions WHERE id = $1`, id)

	contribution, err := scanContribution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContributionNotFound
		}

		return nil, err
	}

	return contribution, nil
}

// UpdatePending rewrites the mutable fields of a pending contribution. The
// status predicate keeps a lost race from editing a terminal contribution.
func (r *ContributionRepository) UpdatePending(ctx context.Context, contribution *domain.Contribution) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contributions
		SET amount = $2, memo = $3, contribution_date = $4, updated_at = $5
		WHERE id = $1 AND status = $6`,
		contribution.ID,
		decimalToNumeric(contribution.Amount),
		contribution.Memo,
		timeToPgTimestamptz(contribution.ContributionDate),
		timeToPgTimestamptz(contribution.UpdatedAt),
		string(domain.ContributionStatusPending),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContributionNotPending
	}

	return nil
}

// MarkConfirmed transitions a pending contribution to CONFIRMED inside the
// booking transaction.
func (r *ContributionRepository) MarkConfirmed(ctx context.Context, tx usecase.Transaction, id, moderatorID, entryID string, at time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE contributions
		SET status = $2, confirmed_by = $3, confirmed_at = $4, entry_id = $5, updated_at = $4
		WHERE id = $1 AND status = $6`,
		id,
		string(domain.ContributionStatusConfirmed),
		moderatorID,
		timeToPgTimestamptz(at),
		entryID,
		string(domain.ContributionStatusPending),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContributionNotPending
	}

	return nil
}

// MarkDenied transitions a pending contribution to DENIED.
func (r *ContributionRepository) MarkDenied(ctx context.Context, id, moderatorID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contributions
		SET status = $2, denied_by = $3, denied_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id,
		string(domain.ContributionStatusDenied),
		moderatorID,
		timeToPgTimestamptz(at),
		string(domain.ContributionStatusPending),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContributionNotPending
	}

	return nil
}

// MarkDeleted transitions a pending contribution to DELETED.
func (r *ContributionRepository) MarkDeleted(ctx context.Context, id, deletedBy string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contributions
		SET status = $2, deleted_by = $3, deleted_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id,
		string(domain.ContributionStatusDeleted),
		deletedBy,
		timeToPgTimestamptz(at),
		string(domain.ContributionStatusPending),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContributionNotPending
	}

	return nil
}

// ListByUser lists a user's contributions newest first.
func (r *ContributionRepository) ListByUser(ctx context.Context, userID string, statuses []domain.ContributionStatus, limit, offset int) ([]*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE user_id = $1`
	args := []any{userID}

	if len(statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args)+1)
		args = append(args, statusStrings(statuses))
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContributions(rows)
}

// ListAll lists contributions across users, for moderation queues.
func (r *ContributionRepository) ListAll(ctx context.Context, statuses []domain.ContributionStatus, limit, offset int) ([]*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions`
	var args []any

	if len(statuses) > 0 {
		query += " WHERE status = ANY($1)"
		args = append(args, statusStrings(statuses))
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContributions(rows)
}

func statusStrings(statuses []domain.ContributionStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}

	return out
}

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var (
		contribution     domain.Contribution
		amount           pgtype.Numeric
		status           string
		contributionDate pgtype.Timestamptz
		confirmedAt      pgtype.Timestamptz
		deniedAt         pgtype.Timestamptz
		deletedAt        pgtype.Timestamptz
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&contribution.ID,
		&contribution.UserID,
		&amount,
		&contribution.Memo,
		&status,
		&contributionDate,
		&contribution.ConfirmedBy,
		&confirmedAt,
		&contribution.DeniedBy,
		&deniedAt,
		&contribution.DeletedBy,
		&deletedAt,
		&contribution.EntryID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	contribution.Amount = numericToDecimal(amount)
	contribution.Status = domain.ContributionStatus(status)
	contribution.ContributionDate = contributionDate.Time
	contribution.ConfirmedAt = pgTimestamptzToTimePtr(confirmedAt)
	contribution.DeniedAt = pgTimestamptzToTimePtr(deniedAt)
	contribution.DeletedAt = pgTimestamptzToTimePtr(deletedAt)
	contribution.CreatedAt = createdAt.Time
	contribution.UpdatedAt = updatedAt.Time

	return &contribution, nil
}

func scanContributions(rows pgx.Rows) ([]*domain.Contribution, error) {
	var contributions []*domain.Contribution
	for rows.Next() {
		contribution, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, contribution)
	}

	return contributions, rows.Err()
}
