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

func TestBalanceUseCase_GetBalance(t *testing.T) {
	addr := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	tests := []struct {
		name          string
		confirmed     *big.Int
		pending       []*domain.LedgerTransaction
		wantConfirmed string
		wantAvailable string
	}{
		{
			name:          "no balance row",
			wantConfirmed: "0",
			wantAvailable: "0",
		},
		{
			name:          "no pending spends",
			confirmed:     big.NewInt(1000),
			wantConfirmed: "1000",
			wantAvailable: "1000",
		},
		{
			name:      "pending withdrawal encumbers amount plus fee",
			confirmed: big.NewInt(1000),
			pending: []*domain.LedgerTransaction{
				{
					ID:          "p1",
					FromAddress: addr,
					Amount:      big.NewInt(600),
					Fee:         big.NewInt(50),
					ChainID:     testChainID,
					Asset:       "ETH",
					Status:      domain.TxStatusPending,
				},
			},
			wantConfirmed: "1000",
			wantAvailable: "350",
		},
		{
			name:      "pending spends exceed confirmed",
			confirmed: big.NewInt(100),
			pending: []*domain.LedgerTransaction{
				{
					ID:          "p1",
					FromAddress: addr,
					Amount:      big.NewInt(90),
					Fee:         big.NewInt(30),
					ChainID:     testChainID,
					Asset:       "ETH",
					Status:      domain.TxStatusPending,
				},
			},
			wantConfirmed: "100",
			wantAvailable: "-20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addressRepo := mocks.NewMockAddressRepository()
			addressRepo.Seed(&domain.Address{Address: addr, Index: 0})
			balanceRepo := mocks.NewMockBalanceRepository()
			if tt.confirmed != nil {
				balanceRepo.Seed(addr, testChainID, "ETH", tt.confirmed)
			}
			txRepo := mocks.NewMockTransactionRepository()
			for _, p := range tt.pending {
				txRepo.Seed(p)
			}

			uc := usecase.NewBalanceUseCase(addressRepo, balanceRepo, txRepo, testChainID)

			report, err := uc.GetBalance(context.Background(), addr, "ETH")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Confirmed.String() != tt.wantConfirmed {
				t.Errorf("confirmed = %s, want %s", report.Confirmed, tt.wantConfirmed)
			}
			if report.Available.String() != tt.wantAvailable {
				t.Errorf("available = %s, want %s", report.Available, tt.wantAvailable)
			}
		})
	}
}

func TestBalanceUseCase_GetBalanceUnknownAddress(t *testing.T) {
	uc := usecase.NewBalanceUseCase(
		mocks.NewMockAddressRepository(),
		mocks.NewMockBalanceRepository(),
		mocks.NewMockTransactionRepository(),
		testChainID,
	)

	_, err := uc.GetBalance(context.Background(), "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "ETH")
	if !errors.Is(err, domain.ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
}

func TestBalanceUseCase_AssetsAreIndependent(t *testing.T) {
	addr := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	addressRepo := mocks.NewMockAddressRepository()
	addressRepo.Seed(&domain.Address{Address: addr, Index: 0})
	balanceRepo := mocks.NewMockBalanceRepository()
	balanceRepo.Seed(addr, testChainID, "ETH", big.NewInt(700))
	balanceRepo.Seed(addr, testChainID, "USDC", big.NewInt(200))
	txRepo := mocks.NewMockTransactionRepository()
	// A pending token transfer must not reduce the native balance.
	txRepo.Seed(&domain.LedgerTransaction{
		ID:          "p1",
		FromAddress: addr,
		Amount:      big.NewInt(150),
		Fee:         big.NewInt(10),
		ChainID:     testChainID,
		Asset:       "USDC",
		Status:      domain.TxStatusPending,
	})

	uc := usecase.NewBalanceUseCase(addressRepo, balanceRepo, txRepo, testChainID)

	eth, err := uc.AvailableBalance(context.Background(), addr, "ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eth.Cmp(big.NewInt(700)) != 0 {
		t.Errorf("ETH available = %s, want 700", eth)
	}

	usdc, err := uc.AvailableBalance(context.Background(), addr, "USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usdc.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("USDC available = %s, want 40", usdc)
	}
}
