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

const testChainID = int64(11155111)

func validHash(seed byte) string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = "0123456789abcdef"[int(seed)%16]
	}
	return "0x" + string(b)
}

func newDepositUseCase(
	addressRepo *mocks.MockAddressRepository,
	balanceRepo *mocks.MockBalanceRepository,
	txRepo *mocks.MockTransactionRepository,
	processedRepo *mocks.MockProcessedRepository,
	detector *mocks.MockTransferDetector,
) *usecase.DepositUseCase {
	return usecase.NewDepositUseCase(
		mocks.NewMockTransactionManager(),
		addressRepo,
		balanceRepo,
		txRepo,
		processedRepo,
		detector,
		mocks.NewMockIDGenerator(),
		testChainID,
	)
}

func TestDepositUseCase_ProcessTransaction(t *testing.T) {
	managedAddr := "0x1111111111111111111111111111111111111111"
	otherAddr := "0x2222222222222222222222222222222222222222"
	hash := validHash(3)

	detection := &domain.DetectionResult{
		Hash: hash,
		Transfers: []domain.Transfer{
			{
				Kind:        domain.AssetNative,
				Asset:       "ETH",
				FromAddress: otherAddr,
				ToAddress:   managedAddr,
				Amount:      big.NewInt(1000),
			},
			{
				Kind:        domain.AssetToken,
				Asset:       "USDC",
				FromAddress: otherAddr,
				ToAddress:   otherAddr,
				Amount:      big.NewInt(500),
			},
		},
	}

	addressRepo := mocks.NewMockAddressRepository()
	addressRepo.Seed(&domain.Address{Address: managedAddr, Index: 0})
	balanceRepo := mocks.NewMockBalanceRepository()
	txRepo := mocks.NewMockTransactionRepository()
	processedRepo := mocks.NewMockProcessedRepository()
	detector := &mocks.MockTransferDetector{
		DetectFunc: func(ctx context.Context, h string) (*domain.DetectionResult, error) {
			return detection, nil
		},
	}

	uc := newDepositUseCase(addressRepo, balanceRepo, txRepo, processedRepo, detector)

	result, err := uc.ProcessTransaction(context.Background(), hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the transfer to the managed address is credited.
	if len(result.Deposits) != 1 {
		t.Fatalf("expected 1 deposit, got %d", len(result.Deposits))
	}
	if result.Deposits[0].Address != managedAddr {
		t.Errorf("credited wrong address: %s", result.Deposits[0].Address)
	}

	balance, _ := balanceRepo.Get(context.Background(), managedAddr, testChainID, "ETH")
	if balance == nil || balance.Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("expected balance 1000, got %v", balance)
	}

	// A second submission is rejected by the marker.
	_, err = uc.ProcessTransaction(context.Background(), hash)
	if !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	// And the balance stays unchanged.
	balance, _ = balanceRepo.Get(context.Background(), managedAddr, testChainID, "ETH")
	if balance.Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("duplicate processing changed balance to %s", balance.Amount)
	}
}

func TestDepositUseCase_MultipleManagedRecipients(t *testing.T) {
	managedA := "0x1111111111111111111111111111111111111111"
	managedB := "0x3333333333333333333333333333333333333333"
	otherAddr := "0x2222222222222222222222222222222222222222"
	hash := validHash(4)

	addressRepo := mocks.NewMockAddressRepository()
	addressRepo.Seed(&domain.Address{Address: managedA, Index: 0})
	addressRepo.Seed(&domain.Address{Address: managedB, Index: 1})
	balanceRepo := mocks.NewMockBalanceRepository()
	txRepo := mocks.NewMockTransactionRepository()

	var markers int
	processedRepo := mocks.NewMockProcessedRepository()
	processedRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, marker *domain.ProcessedTransaction) error {
		if marker.Hash != hash {
			t.Errorf("marker for %s, want %s", marker.Hash, hash)
		}
		markers++
		return nil
	}

	detector := &mocks.MockTransferDetector{
		DetectFunc: func(ctx context.Context, h string) (*domain.DetectionResult, error) {
			return &domain.DetectionResult{
				Hash: h,
				Transfers: []domain.Transfer{
					{Kind: domain.AssetToken, Asset: "USDC", FromAddress: otherAddr, ToAddress: managedA, Amount: big.NewInt(300)},
					{Kind: domain.AssetToken, Asset: "USDC", FromAddress: otherAddr, ToAddress: managedB, Amount: big.NewInt(200)},
				},
			}, nil
		},
	}

	uc := newDepositUseCase(addressRepo, balanceRepo, txRepo, processedRepo, detector)

	result, err := uc.ProcessTransaction(context.Background(), hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two ledger rows, both balances credited, one marker.
	if len(result.Deposits) != 2 {
		t.Fatalf("expected 2 deposits, got %d", len(result.Deposits))
	}

	rows, _ := txRepo.ListByAddress(context.Background(), managedA, testChainID, "USDC", 10, 0)
	if len(rows) != 1 {
		t.Errorf("expected 1 ledger row for %s, got %d", managedA, len(rows))
	}
	rows, _ = txRepo.ListByAddress(context.Background(), managedB, testChainID, "USDC", 10, 0)
	if len(rows) != 1 {
		t.Errorf("expected 1 ledger row for %s, got %d", managedB, len(rows))
	}

	balanceA, _ := balanceRepo.Get(context.Background(), managedA, testChainID, "USDC")
	if balanceA == nil || balanceA.Amount.Cmp(big.NewInt(300)) != 0 {
		t.Errorf("balance for %s = %v, want 300", managedA, balanceA)
	}
	balanceB, _ := balanceRepo.Get(context.Background(), managedB, testChainID, "USDC")
	if balanceB == nil || balanceB.Amount.Cmp(big.NewInt(200)) != 0 {
		t.Errorf("balance for %s = %v, want 200", managedB, balanceB)
	}

	if markers != 1 {
		t.Errorf("expected exactly 1 processed marker, got %d", markers)
	}
}

func TestDepositUseCase_ProcessTransactionHashNormalization(t *testing.T) {
	var detected string
	detector := &mocks.MockTransferDetector{
		DetectFunc: func(ctx context.Context, h string) (*domain.DetectionResult, error) {
			detected = h
			return &domain.DetectionResult{Hash: h}, nil
		},
	}

	uc := newDepositUseCase(
		mocks.NewMockAddressRepository(),
		mocks.NewMockBalanceRepository(),
		mocks.NewMockTransactionRepository(),
		mocks.NewMockProcessedRepository(),
		detector,
	)

	// Uppercase without prefix normalizes to prefixed lowercase.
	raw := "ABCDEF1234567890ABCDEF1234567890ABCDEF1234567890ABCDEF1234567890"
	want := "0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"

	result, err := uc.ProcessTransaction(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detected != want {
		t.Errorf("detector saw %q, want %q", detected, want)
	}
	if result.Hash != want {
		t.Errorf("result hash %q, want %q", result.Hash, want)
	}
}

func TestDepositUseCase_ProcessTransactionInvalidHash(t *testing.T) {
	uc := newDepositUseCase(
		mocks.NewMockAddressRepository(),
		mocks.NewMockBalanceRepository(),
		mocks.NewMockTransactionRepository(),
		mocks.NewMockProcessedRepository(),
		&mocks.MockTransferDetector{},
	)

	for _, hash := range []string{"", "0x1234", "zz", validHash(1) + "00"} {
		if _, err := uc.ProcessTransaction(context.Background(), hash); !errors.Is(err, domain.ErrInvalidTxHash) {
			t.Errorf("hash %q: expected ErrInvalidTxHash, got %v", hash, err)
		}
	}
}

func TestDepositUseCase_DetectorFailureLeavesNoMarker(t *testing.T) {
	hash := validHash(7)
	processedRepo := mocks.NewMockProcessedRepository()
	detector := &mocks.MockTransferDetector{
		DetectFunc: func(ctx context.Context, h string) (*domain.DetectionResult, error) {
			return nil, domain.ErrChainUnavailable
		},
	}

	uc := newDepositUseCase(
		mocks.NewMockAddressRepository(),
		mocks.NewMockBalanceRepository(),
		mocks.NewMockTransactionRepository(),
		processedRepo,
		detector,
	)

	if _, err := uc.ProcessTransaction(context.Background(), hash); !errors.Is(err, domain.ErrChainUnavailable) {
		t.Fatalf("expected ErrChainUnavailable, got %v", err)
	}

	// The hash stays retryable.
	exists, _ := processedRepo.Exists(context.Background(), hash, testChainID)
	if exists {
		t.Error("detector failure must not write a processed marker")
	}
}

func TestDepositUseCase_NoQualifyingTransfersStillMarked(t *testing.T) {
	hash := validHash(9)
	processedRepo := mocks.NewMockProcessedRepository()
	detector := &mocks.MockTransferDetector{
		DetectFunc: func(ctx context.Context, h string) (*domain.DetectionResult, error) {
			return &domain.DetectionResult{Hash: h}, nil
		},
	}

	uc := newDepositUseCase(
		mocks.NewMockAddressRepository(),
		mocks.NewMockBalanceRepository(),
		mocks.NewMockTransactionRepository(),
		processedRepo,
		detector,
	)

	result, err := uc.ProcessTransaction(context.Background(), hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Deposits) != 0 {
		t.Fatalf("expected no deposits, got %d", len(result.Deposits))
	}

	exists, _ := processedRepo.Exists(context.Background(), hash, testChainID)
	if !exists {
		t.Error("transaction without qualifying transfers should still be marked")
	}
}

func TestNormalizeTxHash(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "already normalized",
			in:   "0x" + "1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef",
			want: "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef",
		},
		{
			name: "missing prefix",
			in:   "1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef",
			want: "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef",
		},
		{
			name: "uppercase with whitespace",
			in:   "  0x1234567890ABCDEF1234567890ABCDEF1234567890ABCDEF1234567890ABCDEF ",
			want: "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef",
		},
		{name: "empty", in: "", wantErr: true},
		{name: "too short", in: "0x1234", wantErr: true},
		{name: "non-hex", in: "0x" + "zz34567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usecase.NormalizeTxHash(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidTxHash) {
					t.Fatalf("expected ErrInvalidTxHash, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
