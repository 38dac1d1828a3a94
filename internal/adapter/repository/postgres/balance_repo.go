package postgres

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

const balanceQuery = `
	SELECT address, chain_id, asset, amount, updated_at
	FROM balances
	WHERE address = $1 AND chain_id = $2 AND asset = $3`

// Get retrieves the confirmed balance row, or nil when the address has
// no confirmed history for this asset yet.
func (r *BalanceRepository) Get(ctx context.Context, address string, chainID int64, asset string) (*domain.Balance, error) {
	return r.get(ctx, r.pool, balanceQuery, address, chainID, asset)
}

// GetForUpdate retrieves the balance row with an exclusive row lock,
// so a concurrent settlement debit commits either entirely before or
// entirely after the caller's transaction.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, address string, chainID int64, asset string) (*domain.Balance, error) {
	return r.get(ctx, r.querier(tx), balanceQuery+" FOR UPDATE", address, chainID, asset)
}

func (r *BalanceRepository) get(ctx context.Context, q querier, query, address string, chainID int64, asset string) (*domain.Balance, error) {
	row := q.QueryRow(ctx, query, address, chainID, asset)

	var (
		b      domain.Balance
		amount pgtype.Numeric
	)
	if err := row.Scan(&b.Address, &b.ChainID, &b.Asset, &amount, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}
	b.Amount = numericToBigInt(amount)

	return &b, nil
}

// Add upserts the balance row, adding delta (negative for debits) to
// the current amount. The single statement keeps the read-modify-write
// atomic under concurrent settlement.
func (r *BalanceRepository) Add(ctx context.Context, tx usecase.Transaction, address string, chainID int64, asset string, delta *big.Int, updatedAt time.Time) error {
	q := r.querier(tx)

	_, err := q.Exec(ctx, `
		INSERT INTO balances (address, chain_id, asset, amount, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address, chain_id, asset)
		DO UPDATE SET
			amount = balances.amount + EXCLUDED.amount,
			updated_at = EXCLUDED.updated_at`,
		address,
		chainID,
		asset,
		bigIntToNumeric(delta),
		timeToPgTimestamptz(updatedAt),
	)

	return err
}

func (r *BalanceRepository) querier(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}

	return tx.(*Tx).PgxTx()
}
