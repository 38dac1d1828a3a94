package usecase

import (
	"context"

	"github.com/iho/chainvault/internal/domain"
)

// HistoryUseCase serves paginated transaction history for a managed
// address, newest first.
type HistoryUseCase struct {
	addressRepo AddressRepository
	txRepo      TransactionRepository
	chainID     int64
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(addressRepo AddressRepository, txRepo TransactionRepository, chainID int64) *HistoryUseCase {
	return &HistoryUseCase{
		addressRepo: addressRepo,
		txRepo:      txRepo,
		chainID:     chainID,
	}
}

// HistoryInput represents input for a history query.
type HistoryInput struct {
	Address string
	Asset   string
	Skip    int
	Limit   int
}

// HistoryResult holds one page of ledger transactions.
type HistoryResult struct {
	Address      string
	Asset        string
	ChainID      int64
	Transactions []*domain.LedgerTransaction
	Total        int64
	Skip         int
	Limit        int
}

// History lists ledger transactions touching the address as sender or
// recipient.
func (uc *HistoryUseCase) History(ctx context.Context, input HistoryInput) (*HistoryResult, error) {
	address := domain.NormalizeAddress(input.Address)

	if _, err := uc.addressRepo.GetByAddress(ctx, address); err != nil {
		return nil, err
	}

	if input.Skip < 0 {
		input.Skip = 0
	}
	if input.Limit <= 0 || input.Limit > MaxTransactionsPerList {
		input.Limit = MaxTransactionsPerList
	}

	total, err := uc.txRepo.CountByAddress(ctx, address, uc.chainID, input.Asset)
	if err != nil {
		return nil, err
	}

	transactions, err := uc.txRepo.ListByAddress(ctx, address, uc.chainID, input.Asset, input.Limit, input.Skip)
	if err != nil {
		return nil, err
	}

	return &HistoryResult{
		Address:      address,
		Asset:        input.Asset,
		ChainID:      uc.chainID,
		Transactions: transactions,
		Total:        total,
		Skip:         input.Skip,
		Limit:        input.Limit,
	}, nil
}
