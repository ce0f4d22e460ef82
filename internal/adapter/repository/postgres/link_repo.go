package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/commledger/internal/domain"
	"github.com/iho/commledger/internal/usecase"
)

const linkColumns = `id, user_id, code, amount, hold_available_amount, memo,
	valid_until, redeemed_by, redeemed_at, created_at`

// LinkRepository implements usecase.LinkRepository.
type LinkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository creates a new LinkRepository.
func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

// Create inserts a transfer link inside the given transaction.
func (r *LinkRepository) Create(ctx context.Context, tx usecase.Transaction, link *domain.TransferLink) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO transfer_links (id, user_id, code, amount, hold_available_amount, memo, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		link.ID,
		link.UserID,
		link.Code,
		decimalToNumeric(link.Amount),
		decimalToNumeric(link.HoldAvailableAmount),
		link.Memo,
		timeToPgTimestamptz(link.ValidUntil),
		timeToPgTimestamptz(link.CreatedAt),
	)

	return err
}

// GetByID retrieves a link by ID.
func (r *LinkRepository) GetByID(ctx context.Context, id string) (*domain.TransferLink, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM transfer_links WHERE id = $1`, id)

	return scanLinkRow(row)
}

// GetByCode retrieves a link by its redemption code.
func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*domain.TransferLink, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM transfer_links WHERE code = $1`, code)

	return scanLinkRow(row)
}

// GetByCodeForUpdate retrieves a link by code with a FOR UPDATE lock.
func (r *LinkRepository) GetByCodeForUpdate(ctx context.Context, tx usecase.Transaction, code string) (*domain.TransferLink, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM transfer_links WHERE code = $1 FOR UPDATE`, code)

	return scanLinkRow(row)
}

// MarkRedeemed consumes a link. The predicate on redeemed_at makes the
// transition first-wins even across processes.
func (r *LinkRepository) MarkRedeemed(ctx context.Context, tx usecase.Transaction, id, redeemedBy string, at time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE transfer_links
		SET redeemed_by = $2, redeemed_at = $3
		WHERE id = $1 AND redeemed_at IS NULL`,
		id, redeemedBy, timeToPgTimestamptz(at),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLinkRedeemed
	}

	return nil
}

// SumActiveHolds totals the hold amounts of a user's unredeemed, unexpired
// links.
func (r *LinkRepository) SumActiveHolds(ctx context.Context, userID string, asOf time.Time) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(hold_available_amount), 0) FROM transfer_links
		WHERE user_id = $1 AND redeemed_at IS NULL AND valid_until > $2`,
		userID, timeToPgTimestamptz(asOf),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// ListByUser lists a user's links newest first.
func (r *LinkRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.TransferLink, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+linkColumns+` FROM transfer_links
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*domain.TransferLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

func scanLinkRow(row pgx.Row) (*domain.TransferLink, error) {
	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}

		return nil, err
	}

	return link, nil
}

func scanLink(row pgx.Row) (*domain.TransferLink, error) {
	var (
		link       domain.TransferLink
		amount     pgtype.Numeric
		hold       pgtype.Numeric
		validUntil pgtype.Timestamptz
		redeemedAt pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&link.ID,
		&link.UserID,
		&link.Code,
		&amount,
		&hold,
		&link.Memo,
		&validUntil,
		&link.RedeemedBy,
		&redeemedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	link.Amount = numericToDecimal(amount)
	link.HoldAvailableAmount = numericToDecimal(hold)
	link.ValidUntil = validUntil.Time
	link.RedeemedAt = pgTimestamptzToTimePtr(redeemedAt)
	link.CreatedAt = createdAt.Time

	return &link, nil
}
