package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvault/bankd/internal/domain"
	"github.com/finvault/bankd/internal/usecase"
)

const transferColumns = `id, from_account_id, to_account_id, amount, transfer_date, status, reference_number, created_at, completed_at`

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

// Create creates a new transfer inside the transaction.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	var completedAt pgtype.Timestamptz
	if transfer.CompletedAt != nil {
		completedAt = timeToPgTimestamptz(*transfer.CompletedAt)
	}

	_, err := queryFrom(tx, r.pool).Exec(ctx,
		`INSERT INTO transfers (`+transferColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		transfer.ID,
		transfer.FromAccountID,
		transfer.ToAccountID,
		decimalToNumeric(transfer.Amount),
		timeToPgTimestamptz(transfer.TransferDate),
		string(transfer.Status),
		transfer.ReferenceNumber,
		timeToPgTimestamptz(transfer.CreatedAt),
		completedAt,
	)

	return err
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)

	return scanTransfer(row)
}

// ListByAccount lists transfers touching an account on either side, newest
// first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE from_account_id = $1 OR to_account_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// ListByStatus lists transfers in a given status, oldest first.
func (r *TransferRepository) ListByStatus(ctx context.Context, status domain.TransferStatus) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// UpdateStatus updates a transfer's status inside the transaction.
func (r *TransferRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, completedAt *time.Time) error {
	var completed pgtype.Timestamptz
	if completedAt != nil {
		completed = timeToPgTimestamptz(*completedAt)
	}

	tag, err := queryFrom(tx, r.pool).Exec(ctx,
		`UPDATE transfers SET status = $2, completed_at = $3 WHERE id = $1`,
		id, string(status), completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransferNotFound
	}

	return nil
}

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer     domain.Transfer
		status       string
		amount       pgtype.Numeric
		transferDate pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
		completedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.FromAccountID,
		&transfer.ToAccountID,
		&amount,
		&transferDate,
		&status,
		&transfer.ReferenceNumber,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	transfer.Status = domain.TransferStatus(status)
	transfer.Amount = numericToDecimal(amount)
	transfer.TransferDate = transferDate.Time
	transfer.CreatedAt = createdAt.Time
	if completedAt.Valid {
		t := completedAt.Time
		transfer.CompletedAt = &t
	}

	return &transfer, nil
}

func scanTransfers(rows pgx.Rows) ([]*domain.Transfer, error) {
	var transfers []*domain.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}
