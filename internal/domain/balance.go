package domain

import (
	"math/big"
	"time"
)

// Balance is the confirmed balance for one (address, chain, asset) key,
// in the asset's smallest unit. It reflects confirmed history only:
// deposits credit it, confirmed withdrawals debit it. Pending
// withdrawals are accounted for separately as encumbrances.
type Balance struct {
	Address   string
	ChainID   int64
	Asset     string
	Amount    *big.Int
	UpdatedAt time.Time
}

// Available returns the spendable balance: the confirmed amount minus
// the total still committed to unconfirmed outgoing transfers
// (amount plus fee per pending transaction).
func (b *Balance) Available(pendingSpent *big.Int) *big.Int {
	amount := b.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	if pendingSpent == nil {
		return new(big.Int).Set(amount)
	}
	return new(big.Int).Sub(amount, pendingSpent)
}
