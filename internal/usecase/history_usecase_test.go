package usecase_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
	"github.com/iho/chainvault/internal/usecase/mocks"
)

func TestHistoryUseCase_History(t *testing.T) {
	addr := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	other := "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

	addressRepo := mocks.NewMockAddressRepository()
	addressRepo.Seed(&domain.Address{Address: addr, Index: 0})
	txRepo := mocks.NewMockTransactionRepository()
	txRepo.Seed(&domain.LedgerTransaction{
		ID: "t1", FromAddress: other, ToAddress: addr,
		Amount: big.NewInt(100), ChainID: testChainID, Asset: "ETH",
		Status: domain.TxStatusConfirmed,
	})
	txRepo.Seed(&domain.LedgerTransaction{
		ID: "t2", FromAddress: addr, ToAddress: other,
		Amount: big.NewInt(40), ChainID: testChainID, Asset: "ETH",
		Status: domain.TxStatusPending,
	})
	// Different asset, must not show up.
	txRepo.Seed(&domain.LedgerTransaction{
		ID: "t3", FromAddress: other, ToAddress: addr,
		Amount: big.NewInt(5), ChainID: testChainID, Asset: "USDC",
		Status: domain.TxStatusConfirmed,
	})

	uc := usecase.NewHistoryUseCase(addressRepo, txRepo, testChainID)

	result, err := uc.History(context.Background(), usecase.HistoryInput{
		Address: addr,
		Asset:   "ETH",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 || len(result.Transactions) != 2 {
		t.Errorf("total=%d rows=%d, want 2/2", result.Total, len(result.Transactions))
	}
	if result.Limit != usecase.MaxTransactionsPerList {
		t.Errorf("zero limit should clamp to %d, got %d", usecase.MaxTransactionsPerList, result.Limit)
	}
}

func TestHistoryUseCase_HistoryUnknownAddress(t *testing.T) {
	uc := usecase.NewHistoryUseCase(
		mocks.NewMockAddressRepository(),
		mocks.NewMockTransactionRepository(),
		testChainID,
	)

	_, err := uc.History(context.Background(), usecase.HistoryInput{
		Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Asset:   "ETH",
	})
	if !errors.Is(err, domain.ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
}
