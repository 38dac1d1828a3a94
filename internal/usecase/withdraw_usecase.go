package usecase

import (
	"context"
	"math/big"
	"sync"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/infrastructure/metrics"
)

// WithdrawUseCase submits outgoing transfers: balance gating, chain
// broadcast and the pending ledger record handed to the reconciler.
type WithdrawUseCase struct {
	txManager     TransactionManager
	addressRepo   AddressRepository
	balanceRepo   BalanceRepository
	txRepo        TransactionRepository
	processedRepo ProcessedRepository
	wallet        Wallet
	pending       PendingSink
	assets        domain.AssetRegistry
	metrics       *metrics.Metrics
	chainID       int64

	// Per-address serialization for the check-and-broadcast critical
	// section. The store-level row lock covers multi-instance
	// deployments; this keeps concurrent requests in one process from
	// queueing on the database.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWithdrawUseCase creates a new WithdrawUseCase.
func NewWithdrawUseCase(
	txManager TransactionManager,
	addressRepo AddressRepository,
	balanceRepo BalanceRepository,
	txRepo TransactionRepository,
	processedRepo ProcessedRepository,
	wallet Wallet,
	pending PendingSink,
	assets domain.AssetRegistry,
	chainID int64,
) *WithdrawUseCase {
	return &WithdrawUseCase{
		txManager:     txManager,
		addressRepo:   addressRepo,
		balanceRepo:   balanceRepo,
		txRepo:        txRepo,
		processedRepo: processedRepo,
		wallet:        wallet,
		pending:       pending,
		assets:        assets,
		chainID:       chainID,
		locks:         make(map[string]*sync.Mutex),
	}
}

// WithMetrics enables metrics collection.
func (uc *WithdrawUseCase) WithMetrics(m *metrics.Metrics) *WithdrawUseCase {
	uc.metrics = m
	return uc
}

// SubmitWithdrawalInput represents input for submitting a withdrawal.
type SubmitWithdrawalInput struct {
	FromAddress string
	ToAddress   string
	Asset       string
	Amount      *big.Int
}

// Submit broadcasts an outgoing transfer and persists it as pending.
//
// Preconditions, each a distinct failure: the sender must be managed
// (ErrAddressNotFound), the amount positive (ErrInvalidAmount) and the
// available balance sufficient (ErrInsufficientFunds). The sender's
// address and balance rows stay exclusively locked from the balance
// check through the broadcast, so neither a racing withdrawal nor a
// settlement debit can move the snapshot under the check. No balance
// is debited here; the pending row encumbers availability until the
// reconciler settles it.
func (uc *WithdrawUseCase) Submit(ctx context.Context, input SubmitWithdrawalInput) (*domain.LedgerTransaction, error) {
	tx, err := uc.submit(ctx, input)
	if uc.metrics != nil {
		if err != nil {
			uc.metrics.WithdrawalErrors.WithLabelValues(metricErrorType(err)).Inc()
		} else {
			uc.metrics.WithdrawalsSubmitted.WithLabelValues(tx.Asset).Inc()
		}
	}

	return tx, err
}

func (uc *WithdrawUseCase) submit(ctx context.Context, input SubmitWithdrawalInput) (*domain.LedgerTransaction, error) {
	from := domain.NormalizeAddress(input.FromAddress)
	to := domain.NormalizeAddress(input.ToAddress)

	if _, err := uc.assets.Kind(input.Asset); err != nil {
		return nil, err
	}

	lock := uc.addressLock(from)
	lock.Lock()
	defer lock.Unlock()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	address, err := uc.addressRepo.GetByAddressForUpdate(ctx, tx, from)
	if err != nil {
		return nil, err
	}

	if input.Amount == nil || input.Amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	available, err := uc.availableBalance(ctx, tx, from, input.Asset)
	if err != nil {
		return nil, err
	}
	if available.Cmp(input.Amount) < 0 {
		return nil, domain.ErrInsufficientFunds
	}

	ledgerTx, err := uc.wallet.Transfer(ctx, address.Index, to, input.Asset, input.Amount)
	if err != nil {
		return nil, err
	}

	if err := uc.txRepo.Create(ctx, tx, ledgerTx); err != nil {
		return nil, err
	}

	// The withdrawal's own hash is fenced off so a later
	// process-transaction call cannot credit it as a fresh deposit.
	marker := &domain.ProcessedTransaction{
		Hash:      ledgerTx.Hash,
		ChainID:   uc.chainID,
		CreatedAt: ledgerTx.CreatedAt,
	}
	if err := uc.processedRepo.Create(ctx, tx, marker); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.pending.Add(ledgerTx)

	return ledgerTx, nil
}

// availableBalance reads balance state inside the submit transaction.
// The balance row is locked first: a reconciler settlement debits that
// same row in its own transaction, so it commits either entirely
// before the lock is granted or entirely after this transaction ends.
// The pending sum read under the lock therefore matches the balance it
// is subtracted from; reading them unordered could double-count a
// transfer that settles between the two reads.
func (uc *WithdrawUseCase) availableBalance(ctx context.Context, tx Transaction, address, asset string) (*big.Int, error) {
	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx, address, uc.chainID, asset)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = &domain.Balance{Amount: big.NewInt(0)}
	}

	pendingSpent, err := uc.txRepo.SumPendingSpent(ctx, address, uc.chainID, asset)
	if err != nil {
		return nil, err
	}

	return balance.Available(pendingSpent), nil
}

func (uc *WithdrawUseCase) addressLock(address string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	lock, ok := uc.locks[address]
	if !ok {
		lock = &sync.Mutex{}
		uc.locks[address] = lock
	}

	return lock
}
