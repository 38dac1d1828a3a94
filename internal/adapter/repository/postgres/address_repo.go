package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// AddressRepository implements usecase.AddressRepository.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository creates a new AddressRepository.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// Create inserts a new managed address.
func (r *AddressRepository) Create(ctx context.Context, tx usecase.Transaction, address *domain.Address) error {
	q := r.querier(tx)

	_, err := q.Exec(ctx, `
		INSERT INTO addresses (address, derivation_index, created_at)
		VALUES ($1, $2, $3)`,
		address.Address,
		address.Index,
		timeToPgTimestamptz(address.CreatedAt),
	)

	return err
}

// GetByAddress retrieves a managed address.
func (r *AddressRepository) GetByAddress(ctx context.Context, address string) (*domain.Address, error) {
	return r.getByAddress(ctx, r.pool, address, "")
}

// GetByAddressForUpdate retrieves a managed address with a FOR UPDATE lock.
func (r *AddressRepository) GetByAddressForUpdate(ctx context.Context, tx usecase.Transaction, address string) (*domain.Address, error) {
	return r.getByAddress(ctx, r.querier(tx), address, " FOR UPDATE")
}

func (r *AddressRepository) getByAddress(ctx context.Context, q querier, address, suffix string) (*domain.Address, error) {
	row := q.QueryRow(ctx, `
		SELECT address, derivation_index, created_at
		FROM addresses
		WHERE address = $1`+suffix,
		address,
	)

	var a domain.Address
	if err := row.Scan(&a.Address, &a.Index, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}

		return nil, err
	}

	return &a, nil
}

// FilterManaged returns the subset of the given addresses that are managed.
func (r *AddressRepository) FilterManaged(ctx context.Context, addresses []string) (map[string]struct{}, error) {
	if len(addresses) == 0 {
		return map[string]struct{}{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT address
		FROM addresses
		WHERE address = ANY($1)`,
		addresses,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	managed := make(map[string]struct{}, len(addresses))
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		managed[addr] = struct{}{}
	}

	return managed, rows.Err()
}

// List lists managed addresses ordered by derivation index.
func (r *AddressRepository) List(ctx context.Context, limit, offset int) ([]*domain.Address, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT address, derivation_index, created_at
		FROM addresses
		ORDER BY derivation_index
		LIMIT $1 OFFSET $2`,
		int32(limit),
		int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := make([]*domain.Address, 0, limit)
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.Address, &a.Index, &a.CreatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, &a)
	}

	return addresses, rows.Err()
}

// Count returns the total number of managed addresses.
func (r *AddressRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM addresses`).Scan(&count)

	return count, err
}

func (r *AddressRepository) querier(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}

	return tx.(*Tx).PgxTx()
}
