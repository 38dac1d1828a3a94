package usecase

import (
	"context"
	"math/big"

	"github.com/iho/chainvault/internal/domain"
)

// BalanceUseCase answers balance queries: the confirmed amount and the
// spendable amount net of pending withdrawals.
type BalanceUseCase struct {
	addressRepo AddressRepository
	balanceRepo BalanceRepository
	txRepo      TransactionRepository
	chainID     int64
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	addressRepo AddressRepository,
	balanceRepo BalanceRepository,
	txRepo TransactionRepository,
	chainID int64,
) *BalanceUseCase {
	return &BalanceUseCase{
		addressRepo: addressRepo,
		balanceRepo: balanceRepo,
		txRepo:      txRepo,
		chainID:     chainID,
	}
}

// BalanceReport holds both views of an address's funds for one asset.
type BalanceReport struct {
	Address   string
	ChainID   int64
	Asset     string
	Confirmed *big.Int
	Available *big.Int
}

// GetBalance returns the confirmed and available balance for a managed
// address. Fails with ErrAddressNotFound for unknown addresses.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, address, asset string) (*BalanceReport, error) {
	address = domain.NormalizeAddress(address)

	if _, err := uc.addressRepo.GetByAddress(ctx, address); err != nil {
		return nil, err
	}

	available, confirmed, err := uc.availableBalance(ctx, address, asset)
	if err != nil {
		return nil, err
	}

	return &BalanceReport{
		Address:   address,
		ChainID:   uc.chainID,
		Asset:     asset,
		Confirmed: confirmed,
		Available: available,
	}, nil
}

// AvailableBalance returns the spendable balance: confirmed minus the
// amount+fee of every pending outgoing transfer for the same
// chain/asset. Pending spends encumber availability even though the
// confirmed row is only debited on confirmation, so a second
// withdrawal cannot spend funds already committed to a first.
func (uc *BalanceUseCase) AvailableBalance(ctx context.Context, address, asset string) (*big.Int, error) {
	available, _, err := uc.availableBalance(ctx, domain.NormalizeAddress(address), asset)
	return available, err
}

func (uc *BalanceUseCase) availableBalance(ctx context.Context, address, asset string) (available, confirmed *big.Int, err error) {
	balance, err := uc.balanceRepo.Get(ctx, address, uc.chainID, asset)
	if err != nil {
		return nil, nil, err
	}
	// No row yet means no confirmed history.
	if balance == nil {
		balance = &domain.Balance{Amount: big.NewInt(0)}
	}

	pendingSpent, err := uc.txRepo.SumPendingSpent(ctx, address, uc.chainID, asset)
	if err != nil {
		return nil, nil, err
	}

	confirmed = balance.Amount
	if confirmed == nil {
		confirmed = big.NewInt(0)
	}

	return balance.Available(pendingSpent), confirmed, nil
}
