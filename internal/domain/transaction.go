package domain

import (
	"math/big"
	"time"
)

// TxStatus is the lifecycle state of a ledger transaction.
// pending is the only non-terminal state.
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusFailed    TxStatus = "failed"
)

// Terminal reports whether the status is final.
func (s TxStatus) Terminal() bool {
	return s == TxStatusConfirmed || s == TxStatusFailed
}

// LedgerTransaction records one asset movement. A single chain
// transaction may produce several rows (multiple recipients or assets),
// so Hash is not unique.
//
// Deposit rows are created already confirmed; withdrawal rows start
// pending and are driven to a terminal state by the reconciler.
type LedgerTransaction struct {
	ID          string
	Hash        string
	FromAddress string
	ToAddress   string
	Amount      *big.Int
	ChainID     int64
	Asset       string
	Status      TxStatus
	GasUsed     int64
	GasPrice    *big.Int
	Fee         *big.Int
	CreatedAt   time.Time
}

// Spent returns the total the sender has committed: amount plus fee.
// Used both for availability encumbrance while pending and for the
// balance debit on confirmation.
func (t *LedgerTransaction) Spent() *big.Int {
	total := new(big.Int)
	if t.Amount != nil {
		total.Add(total, t.Amount)
	}
	if t.Fee != nil {
		total.Add(total, t.Fee)
	}
	return total
}

// Validate checks the transaction invariants that hold for every row.
func (t *LedgerTransaction) Validate() error {
	if t.Amount == nil || t.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ProcessedTransaction is the idempotency fence for deposit crediting:
// its existence for (hash, chain) means every qualifying transfer of
// that chain transaction has been credited. Never updated or deleted.
type ProcessedTransaction struct {
	Hash      string
	ChainID   int64
	CreatedAt time.Time
}
