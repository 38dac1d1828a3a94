package postgres

import (
	"context"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `
	id, hash, from_address, to_address, amount, chain_id, asset,
	status, gas_used, gas_price, fee, created_at`

// Create inserts a new ledger transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.LedgerTransaction) error {
	q := r.querier(tx)

	_, err := q.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID,
		t.Hash,
		t.FromAddress,
		t.ToAddress,
		bigIntToNumeric(t.Amount),
		t.ChainID,
		t.Asset,
		string(t.Status),
		t.GasUsed,
		bigIntToNumeric(t.GasPrice),
		bigIntToNumeric(t.Fee),
		timeToPgTimestamptz(t.CreatedAt),
	)

	return err
}

// UpdateStatus transitions a ledger transaction to a new status.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TxStatus, updatedAt time.Time) error {
	q := r.querier(tx)

	tag, err := q.Exec(ctx, `
		UPDATE transactions
		SET status = $2, updated_at = $3
		WHERE id = $1`,
		id,
		string(status),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListPending returns every transaction still awaiting settlement.
func (r *TransactionRepository) ListPending(ctx context.Context) ([]*domain.LedgerTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE status = $1
		ORDER BY created_at`,
		string(domain.TxStatusPending),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SumPendingSpent totals amount+fee over the address's pending outgoing
// transfers.
func (r *TransactionRepository) SumPendingSpent(ctx context.Context, fromAddress string, chainID int64, asset string) (*big.Int, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount + fee), 0)
		FROM transactions
		WHERE from_address = $1 AND chain_id = $2 AND asset = $3 AND status = $4`,
		fromAddress,
		chainID,
		asset,
		string(domain.TxStatusPending),
	)

	var total pgtype.Numeric
	if err := row.Scan(&total); err != nil {
		return nil, err
	}

	return numericToBigInt(total), nil
}

// ListByAddress lists the transactions touching the address as sender
// or recipient, newest first.
func (r *TransactionRepository) ListByAddress(ctx context.Context, address string, chainID int64, asset string, limit, offset int) ([]*domain.LedgerTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE (from_address = $1 OR to_address = $1) AND chain_id = $2 AND asset = $3
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`,
		address,
		chainID,
		asset,
		int32(limit),
		int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// CountByAddress counts the transactions touching the address.
func (r *TransactionRepository) CountByAddress(ctx context.Context, address string, chainID int64, asset string) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE (from_address = $1 OR to_address = $1) AND chain_id = $2 AND asset = $3`,
		address,
		chainID,
		asset,
	).Scan(&count)

	return count, err
}

func scanTransactions(rows pgx.Rows) ([]*domain.LedgerTransaction, error) {
	var txs []*domain.LedgerTransaction

	for rows.Next() {
		var (
			t        domain.LedgerTransaction
			status   string
			amount   pgtype.Numeric
			gasPrice pgtype.Numeric
			fee      pgtype.Numeric
		)
		if err := rows.Scan(
			&t.ID, &t.Hash, &t.FromAddress, &t.ToAddress, &amount,
			&t.ChainID, &t.Asset, &status, &t.GasUsed, &gasPrice, &fee,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}

		t.Status = domain.TxStatus(status)
		t.Amount = numericToBigInt(amount)
		t.GasPrice = numericToBigInt(gasPrice)
		t.Fee = numericToBigInt(fee)
		txs = append(txs, &t)
	}

	return txs, rows.Err()
}

func (r *TransactionRepository) querier(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}

	return tx.(*Tx).PgxTx()
}
