// Package reconciler drives submitted outgoing transfers from pending
// to a terminal chain state and settles balances accordingly.
package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/infrastructure/metrics"
	"github.com/iho/chainvault/internal/usecase"
)

// Reconciler polls chain receipts for every not-yet-finalized outgoing
// transfer. It holds the working set in memory, seeded at startup from
// persisted pending rows and grown by each new withdrawal.
//
// The loop is a single worker: one tick processes the whole set
// sequentially, and a stop request takes effect between ticks, never
// mid-tick.
type Reconciler struct {
	txManager     usecase.TransactionManager
	txRepo        usecase.TransactionRepository
	balanceRepo   usecase.BalanceRepository
	client        usecase.ChainClient
	logger        *slog.Logger
	metrics       *metrics.Metrics
	interval      time.Duration
	maxPendingAge time.Duration

	mu      sync.Mutex
	working map[string]*domain.LedgerTransaction
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// Config for Reconciler.
type Config struct {
	TxManager   usecase.TransactionManager
	TxRepo      usecase.TransactionRepository
	BalanceRepo usecase.BalanceRepository
	Client      usecase.ChainClient
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	// Interval between polling ticks.
	Interval time.Duration
	// MaxPendingAge bounds how long a never-mined transfer stays in
	// the working set before being failed. Zero disables expiry.
	MaxPendingAge time.Duration
}

// New creates a new Reconciler.
func New(cfg Config) *Reconciler {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Reconciler{
		txManager:     cfg.TxManager,
		txRepo:        cfg.TxRepo,
		balanceRepo:   cfg.BalanceRepo,
		client:        cfg.Client,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		interval:      cfg.Interval,
		maxPendingAge: cfg.MaxPendingAge,
		working:       make(map[string]*domain.LedgerTransaction),
	}
}

// Add inserts a pending transaction into the working set.
func (r *Reconciler) Add(tx *domain.LedgerTransaction) {
	r.mu.Lock()
	r.working[tx.ID] = tx
	r.mu.Unlock()

	r.updatePendingGauge()
}

// Start seeds the working set from every persisted pending row, then
// launches the polling loop. The resync runs to completion before the
// first tick. A second Start while running is a no-op.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.mu.Unlock()

	pending, err := r.txRepo.ListPending(ctx)
	if err != nil {
		r.mu.Lock()
		r.started = false
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	for _, tx := range pending {
		r.working[tx.ID] = tx
	}
	size := len(r.working)
	r.mu.Unlock()
	r.updatePendingGauge()

	r.logger.Info("reconciler started",
		slog.Int("pending", size),
		slog.Duration("interval", r.interval))

	go r.loop(ctx)

	return nil
}

// Stop signals the loop to exit after its current tick and waits for
// it. Safe to call when not running.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	close(r.stop)
	done := r.done
	r.mu.Unlock()

	<-done

	r.logger.Info("reconciler stopped")
}

func (r *Reconciler) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick attempts to settle every transaction currently in the working
// set. Per-transaction failures are logged and left for the next tick;
// they never abort the remainder of the tick.
func (r *Reconciler) tick(ctx context.Context) {
	if r.metrics != nil {
		r.metrics.ReconcilerTicks.Inc()
	}

	for _, tx := range r.snapshot() {
		if err := r.settle(ctx, tx); err != nil {
			r.logger.Error("failed to settle transaction",
				slog.String("tx_id", tx.ID),
				slog.String("tx_hash", tx.Hash),
				slog.String("error", err.Error()))
		}
	}
}

// settle resolves one pending transfer against its chain receipt.
func (r *Reconciler) settle(ctx context.Context, tx *domain.LedgerTransaction) error {
	receipt, err := r.client.TransactionReceipt(ctx, tx.Hash)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return r.handleUnmined(ctx, tx)
	}
	if err != nil {
		// Transient: the transaction stays pending for the next tick.
		return err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return r.markFailed(ctx, tx, "failed")
	}

	return r.confirm(ctx, tx)
}

// handleUnmined leaves a not-yet-mined transfer pending unless it has
// exceeded the configured pending age, in which case it is failed and
// dropped so availability stops being encumbered forever.
func (r *Reconciler) handleUnmined(ctx context.Context, tx *domain.LedgerTransaction) error {
	if r.maxPendingAge <= 0 || time.Since(tx.CreatedAt) <= r.maxPendingAge {
		return nil
	}

	r.logger.Warn("expiring pending transaction past maximum age",
		slog.String("tx_id", tx.ID),
		slog.String("tx_hash", tx.Hash),
		slog.Time("created_at", tx.CreatedAt))

	return r.markFailed(ctx, tx, "expired")
}

// markFailed transitions a transfer to failed. No balance changes: the
// funds were never spent on chain.
func (r *Reconciler) markFailed(ctx context.Context, tx *domain.LedgerTransaction, outcome string) error {
	dbTx, err := r.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	now := time.Now().UTC()
	if err := r.txRepo.UpdateStatus(ctx, dbTx, tx.ID, domain.TxStatusFailed, now); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return err
	}

	r.remove(tx.ID)
	r.recordSettled(outcome)

	return nil
}

// confirm transitions a transfer to confirmed and debits the sender's
// balance by amount+fee in the same database transaction, so the debit
// and the status flip land atomically.
func (r *Reconciler) confirm(ctx context.Context, tx *domain.LedgerTransaction) error {
	dbTx, err := r.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	now := time.Now().UTC()

	if err := r.txRepo.UpdateStatus(ctx, dbTx, tx.ID, domain.TxStatusConfirmed, now); err != nil {
		return err
	}

	debit := new(big.Int).Neg(tx.Spent())
	if err := r.balanceRepo.Add(ctx, dbTx, tx.FromAddress, tx.ChainID, tx.Asset, debit, now); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return err
	}

	r.remove(tx.ID)
	r.recordSettled("confirmed")

	r.logger.Info("transaction confirmed",
		slog.String("tx_id", tx.ID),
		slog.String("tx_hash", tx.Hash),
		slog.String("from", tx.FromAddress),
		slog.String("asset", tx.Asset))

	return nil
}

func (r *Reconciler) snapshot() []*domain.LedgerTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*domain.LedgerTransaction, 0, len(r.working))
	for _, tx := range r.working {
		list = append(list, tx)
	}

	return list
}

func (r *Reconciler) remove(id string) {
	r.mu.Lock()
	delete(r.working, id)
	r.mu.Unlock()

	r.updatePendingGauge()
}

func (r *Reconciler) recordSettled(outcome string) {
	if r.metrics != nil {
		r.metrics.ReconcilerSettled.WithLabelValues(outcome).Inc()
	}
}

func (r *Reconciler) updatePendingGauge() {
	if r.metrics == nil {
		return
	}

	r.mu.Lock()
	size := len(r.working)
	r.mu.Unlock()

	r.metrics.PendingTransactions.Set(float64(size))
}
