package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
)

const entryColumns = `id, user_id, kind, memo, amount, balance, decay, decay_start,
	previous_entry_id, linked_entry_id, linked_user_id, link_id,
	balance_date, created_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts an entry inside the given transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		entry.ID,
		entry.UserID,
		string(entry.Kind),
		entry.Memo,
		decimalToNumeric(entry.Amount),
		decimalToNumeric(entry.Balance),
		decimalToNumeric(entry.Decay),
		timePtrToPgTimestamptz(entry.DecayStart),
		entry.PreviousEntryID,
		entry.LinkedEntryID,
		entry.LinkedUserID,
		entry.LinkID,
		timeToPgTimestamptz(entry.BalanceDate),
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// SetLinkedEntry patches the counterpart reference on an inserted entry.
func (r *EntryRepository) SetLinkedEntry(ctx context.Context, tx usecase.Transaction, id, linkedEntryID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE entries SET linked_entry_id = $2 WHERE id = $1`,
		id, linkedEntryID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

// GetLastByUser retrieves the chain head for a user.
func (r *EntryRepository) GetLastByUser(ctx context.Context, userID string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = $1
		ORDER BY balance_date DESC, created_at DESC
		LIMIT 1`, userID)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

// ListByUser lists a user's entries newest first with pagination.
func (r *EntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = $1
		ORDER BY balance_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListChain returns a user's full chain in chain order.
func (r *EntryRepository) ListChain(ctx context.Context, userID string) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = $1
		ORDER BY balance_date ASC, created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CountByUser counts a user's entries.
func (r *EntryRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM entries WHERE user_id = $1`, userID,
	).Scan(&count)

	return count, err
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		entry       domain.Entry
		kind        string
		amount      pgtype.Numeric
		balance     pgtype.Numeric
		decayAmount pgtype.Numeric
		decayStart  pgtype.Timestamptz
		balanceDate pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&kind,
		&entry.Memo,
		&amount,
		&balance,
		&decayAmount,
		&decayStart,
		&entry.PreviousEntryID,
		&entry.LinkedEntryID,
		&entry.LinkedUserID,
		&entry.LinkID,
		&balanceDate,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Kind = domain.EntryKind(kind)
	entry.Amount = numericToDecimal(amount)
	entry.Balance = numericToDecimal(balance)
	entry.Decay = numericToDecimal(decayAmount)
	entry.DecayStart = pgTimestamptzToTimePtr(decayStart)
	entry.BalanceDate = balanceDate.Time
	entry.CreatedAt = createdAt.Time

	return &entry, nil
}

func scanEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
