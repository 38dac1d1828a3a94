package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// ProcessedRepository implements usecase.ProcessedRepository. The
// (hash, chain_id) primary key is the at-most-once fence for deposit
// crediting: two concurrent submissions race on the insert and exactly
// one loses with a unique violation.
type ProcessedRepository struct {
	pool *pgxpool.Pool
}

// NewProcessedRepository creates a new ProcessedRepository.
func NewProcessedRepository(pool *pgxpool.Pool) *ProcessedRepository {
	return &ProcessedRepository{pool: pool}
}

// Exists reports whether the transaction hash has already been processed.
func (r *ProcessedRepository) Exists(ctx context.Context, hash string, chainID int64) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM processed_transactions
			WHERE hash = $1 AND chain_id = $2
		)`,
		hash, chainID,
	).Scan(&exists)

	return exists, err
}

// Create inserts the processed marker. A duplicate insert surfaces as
// domain.ErrAlreadyProcessed.
func (r *ProcessedRepository) Create(ctx context.Context, tx usecase.Transaction, marker *domain.ProcessedTransaction) error {
	q := r.querier(tx)

	_, err := q.Exec(ctx, `
		INSERT INTO processed_transactions (hash, chain_id, created_at)
		VALUES ($1, $2, $3)`,
		marker.Hash,
		marker.ChainID,
		timeToPgTimestamptz(marker.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrAlreadyProcessed
		}

		return err
	}

	return nil
}

func (r *ProcessedRepository) querier(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}

	return tx.(*Tx).PgxTx()
}
