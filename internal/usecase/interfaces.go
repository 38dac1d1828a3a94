package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/iho/chainvault/internal/domain"
)

// AddressRepository defines data access for managed addresses.
type AddressRepository interface {
	Create(ctx context.Context, tx Transaction, address *domain.Address) error
	GetByAddress(ctx context.Context, address string) (*domain.Address, error)
	GetByAddressForUpdate(ctx context.Context, tx Transaction, address string) (*domain.Address, error)
	// FilterManaged returns the subset of the given addresses that are
	// managed, as a set. Single bulk lookup for deposit filtering.
	FilterManaged(ctx context.Context, addresses []string) (map[string]struct{}, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Address, error)
	Count(ctx context.Context) (int64, error)
}

// BalanceRepository defines data access for confirmed balances.
type BalanceRepository interface {
	// Get returns the balance row, or nil when no confirmed history
	// exists yet.
	Get(ctx context.Context, address string, chainID int64, asset string) (*domain.Balance, error)
	// GetForUpdate is Get with an exclusive lock on the balance row,
	// held until the transaction ends. Settlement debits serialize
	// behind it.
	GetForUpdate(ctx context.Context, tx Transaction, address string, chainID int64, asset string) (*domain.Balance, error)
	// Add upserts the balance row, adding delta (negative for debits)
	// to the current amount. Creates the row on first credit.
	Add(ctx context.Context, tx Transaction, address string, chainID int64, asset string, delta *big.Int, updatedAt time.Time) error
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.LedgerTransaction) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TxStatus, updatedAt time.Time) error
	ListPending(ctx context.Context) ([]*domain.LedgerTransaction, error)
	// SumPendingSpent totals amount+fee over pending outgoing transfers
	// for the address, the encumbrance against its confirmed balance.
	SumPendingSpent(ctx context.Context, fromAddress string, chainID int64, asset string) (*big.Int, error)
	ListByAddress(ctx context.Context, address string, chainID int64, asset string, limit, offset int) ([]*domain.LedgerTransaction, error)
	CountByAddress(ctx context.Context, address string, chainID int64, asset string) (int64, error)
}

// ProcessedRepository defines data access for the deposit idempotency fence.
type ProcessedRepository interface {
	Exists(ctx context.Context, hash string, chainID int64) (bool, error)
	Create(ctx context.Context, tx Transaction, marker *domain.ProcessedTransaction) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient store failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ChainTransaction is the subset of an on-chain transaction the core
// reads. The sender is recovered by the client so callers never touch
// signature material.
type ChainTransaction struct {
	Hash        string
	From        string
	To          string
	Value       *big.Int
	BlockNumber int64
}

// ChainClient is the chain RPC surface the core depends on.
// Lookups for unmined or unknown hashes fail with
// domain.ErrTransactionNotFound; transport failures surface as
// domain.ErrChainUnavailable.
type ChainClient interface {
	TransactionByHash(ctx context.Context, hash string) (*ChainTransaction, error)
	TransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error)
	PendingNonceAt(ctx context.Context, address string) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// TransferDetector extracts value transfers from a mined transaction.
type TransferDetector interface {
	Detect(ctx context.Context, hash string) (*domain.DetectionResult, error)
}

// Wallet builds, signs and broadcasts an outgoing transfer, returning
// the pending ledger record carrying the resulting chain hash.
type Wallet interface {
	Transfer(ctx context.Context, fromIndex int64, toAddress, asset string, amount *big.Int) (*domain.LedgerTransaction, error)
}

// KeyDeriver returns the deterministic address for a derivation index.
type KeyDeriver interface {
	DeriveAddress(index int64) (string, error)
}

// PendingSink receives freshly submitted pending transactions. The
// reconciler's working set implements it.
type PendingSink interface {
	Add(tx *domain.LedgerTransaction)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
