package usecase

import (
	"context"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/infrastructure/metrics"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

// DepositUseCase handles one-time processing of inbound chain
// transactions: detection, managed-address filtering, crediting and
// the idempotency marker.
type DepositUseCase struct {
	txManager     TransactionManager
	addressRepo   AddressRepository
	balanceRepo   BalanceRepository
	txRepo        TransactionRepository
	processedRepo ProcessedRepository
	detector      TransferDetector
	idGen         IDGenerator
	retrier       Retrier
	metrics       *metrics.Metrics
	chainID       int64
}

// NewDepositUseCase creates a new DepositUseCase.
func NewDepositUseCase(
	txManager TransactionManager,
	addressRepo AddressRepository,
	balanceRepo BalanceRepository,
	txRepo TransactionRepository,
	processedRepo ProcessedRepository,
	detector TransferDetector,
	idGen IDGenerator,
	chainID int64,
) *DepositUseCase {
	return &DepositUseCase{
		txManager:     txManager,
		addressRepo:   addressRepo,
		balanceRepo:   balanceRepo,
		txRepo:        txRepo,
		processedRepo: processedRepo,
		detector:      detector,
		idGen:         idGen,
		chainID:       chainID,
	}
}

// WithRetrier enables retry on transient store errors for the credit
// transaction. The detector never re-runs on retry.
func (uc *DepositUseCase) WithRetrier(retrier Retrier) *DepositUseCase {
	uc.retrier = retrier
	return uc
}

// WithMetrics enables metrics collection.
func (uc *DepositUseCase) WithMetrics(m *metrics.Metrics) *DepositUseCase {
	uc.metrics = m
	return uc
}

// DepositCredit is one balance credit applied while processing a
// transaction.
type DepositCredit struct {
	Address string
	Asset   string
	Amount  *big.Int
}

// ProcessTransactionResult reports what a processing run credited.
type ProcessTransactionResult struct {
	Hash     string
	ChainID  int64
	Deposits []DepositCredit
}

// ProcessTransaction credits every qualifying transfer of the given
// chain transaction exactly once.
//
// The processed marker is checked before any detection work and
// written only after all credits of the hash have committed; both the
// pre-check and the marker's uniqueness constraint reject duplicates
// with ErrAlreadyProcessed.
func (uc *DepositUseCase) ProcessTransaction(ctx context.Context, hash string) (*ProcessTransactionResult, error) {
	result, err := uc.processTransaction(ctx, hash)
	if uc.metrics != nil {
		if err != nil {
			uc.metrics.DepositErrors.WithLabelValues(metricErrorType(err)).Inc()
		} else {
			uc.metrics.DepositsProcessed.Inc()
			for _, d := range result.Deposits {
				uc.metrics.DepositsCredited.WithLabelValues(d.Asset).Inc()
			}
		}
	}

	return result, err
}

func (uc *DepositUseCase) processTransaction(ctx context.Context, hash string) (*ProcessTransactionResult, error) {
	hash, err := NormalizeTxHash(hash)
	if err != nil {
		return nil, err
	}

	processed, err := uc.processedRepo.Exists(ctx, hash, uc.chainID)
	if err != nil {
		return nil, err
	}
	if processed {
		return nil, domain.ErrAlreadyProcessed
	}

	// Detector failures propagate without writing a marker, so the
	// caller may retry.
	result, err := uc.detector.Detect(ctx, hash)
	if err != nil {
		return nil, err
	}

	managed, err := uc.lookupManaged(ctx, result.Transfers)
	if err != nil {
		return nil, err
	}

	var deposits []DepositCredit
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, func() error {
			var creditErr error
			deposits, creditErr = uc.credit(ctx, hash, result.Transfers, managed)
			return creditErr
		})
	} else {
		deposits, err = uc.credit(ctx, hash, result.Transfers, managed)
	}
	if err != nil {
		return nil, err
	}

	return &ProcessTransactionResult{
		Hash:     hash,
		ChainID:  uc.chainID,
		Deposits: deposits,
	}, nil
}

// credit applies every qualifying transfer and the processed marker in
// one store transaction.
func (uc *DepositUseCase) credit(ctx context.Context, hash string, transfers []domain.Transfer, managed map[string]struct{}) ([]DepositCredit, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	var deposits []DepositCredit
	for _, transfer := range transfers {
		to := domain.NormalizeAddress(transfer.ToAddress)
		if _, ok := managed[to]; !ok {
			continue
		}

		ledgerTx := &domain.LedgerTransaction{
			ID:          uc.idGen.Generate(),
			Hash:        hash,
			FromAddress: domain.NormalizeAddress(transfer.FromAddress),
			ToAddress:   to,
			Amount:      transfer.Amount,
			ChainID:     uc.chainID,
			Asset:       transfer.Asset,
			// Inbound transactions are already mined when processed.
			Status:    domain.TxStatusConfirmed,
			CreatedAt: now,
		}

		if err := ledgerTx.Validate(); err != nil {
			return nil, err
		}

		if err := uc.txRepo.Create(ctx, tx, ledgerTx); err != nil {
			return nil, err
		}

		if err := uc.balanceRepo.Add(ctx, tx, to, uc.chainID, transfer.Asset, transfer.Amount, now); err != nil {
			return nil, err
		}

		deposits = append(deposits, DepositCredit{
			Address: to,
			Asset:   transfer.Asset,
			Amount:  transfer.Amount,
		})
	}

	// Marker last: its commit implies every credit above committed.
	// A transaction with zero qualifying transfers is still marked, to
	// avoid repeated detection cost.
	marker := &domain.ProcessedTransaction{
		Hash:      hash,
		ChainID:   uc.chainID,
		CreatedAt: now,
	}
	if err := uc.processedRepo.Create(ctx, tx, marker); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return deposits, nil
}

func (uc *DepositUseCase) lookupManaged(ctx context.Context, transfers []domain.Transfer) (map[string]struct{}, error) {
	if len(transfers) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool)

	var addresses []string
	for _, t := range transfers {
		to := domain.NormalizeAddress(t.ToAddress)
		if !seen[to] {
			seen[to] = true
			addresses = append(addresses, to)
		}
	}

	return uc.addressRepo.FilterManaged(ctx, addresses)
}

// NormalizeTxHash lowercases a transaction hash, adds the 0x prefix if
// missing and validates the format.
func NormalizeTxHash(hash string) (string, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash == "" {
		return "", domain.ErrInvalidTxHash
	}
	if !strings.HasPrefix(hash, "0x") {
		hash = "0x" + hash
	}
	if !txHashPattern.MatchString(hash) {
		return "", domain.ErrInvalidTxHash
	}
	return hash, nil
}
