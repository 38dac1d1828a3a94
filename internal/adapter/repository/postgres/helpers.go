package postgres

import (
	"context"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// querier is the subset of pgx shared by pools and transactions, so
// every query can run against either.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgErrUniqueViolation is the PostgreSQL error code for a unique
// constraint violation.
const pgErrUniqueViolation = "23505"

// Type conversion helpers. Amounts are stored as NUMERIC(78,0), wide
// enough for any uint256 value.
func bigIntToNumeric(v *big.Int) pgtype.Numeric {
	var n pgtype.Numeric

	if v == nil {
		v = new(big.Int)
	}
	_ = n.Scan(v.String())

	return n
}

func numericToBigInt(n pgtype.Numeric) *big.Int {
	if !n.Valid || n.Int == nil {
		return new(big.Int)
	}

	v := new(big.Int).Set(n.Int)
	if n.Exp > 0 {
		exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		v.Mul(v, exp)
	}

	return v
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
