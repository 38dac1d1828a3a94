package chain_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/mock/gomock"

	"github.com/iho/chainvault/internal/chain"
	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
	"github.com/iho/chainvault/internal/usecase/mocks"
)

const (
	tokenContract = "0x1c7d4b196cb0c7b01d743fbc6116a902379c7238"
	detectHash    = "0x0101010101010101010101010101010101010101010101010101010101010101"
)

var (
	detectAssets  = domain.AssetRegistry{Native: "ETH", Token: "USDC"}
	transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
)

func transferLog(contract string, from, to common.Address, amount *big.Int) *types.Log {
	data := make([]byte, 32)
	amount.FillBytes(data)
	return &types.Log{
		Address: common.HexToAddress(contract),
		Topics: []common.Hash{
			transferTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}
}

func TestDetector_DetectNativeTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockChainClient(ctrl)

	client.EXPECT().TransactionByHash(gomock.Any(), detectHash).Return(&usecase.ChainTransaction{
		Hash:  detectHash,
		From:  "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		To:    "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Value: big.NewInt(1_000_000),
	}, nil)
	client.EXPECT().TransactionReceipt(gomock.Any(), detectHash).Return(&types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(123456),
	}, nil)

	detector := chain.NewDetector(client, tokenContract, detectAssets, nil)

	result, err := detector.Detect(context.Background(), detectHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BlockNumber != 123456 {
		t.Errorf("block number = %d, want 123456", result.BlockNumber)
	}
	if len(result.Transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(result.Transfers))
	}

	transfer := result.Transfers[0]
	if transfer.Kind != domain.AssetNative || transfer.Asset != "ETH" {
		t.Errorf("unexpected classification: kind=%v asset=%s", transfer.Kind, transfer.Asset)
	}
	if transfer.Amount.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Errorf("amount = %s, want 1000000", transfer.Amount)
	}
}

func TestDetector_DetectTokenTransfers(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockChainClient(ctrl)

	from := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
	to := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")

	// Zero-value contract call: no native transfer, only the log.
	client.EXPECT().TransactionByHash(gomock.Any(), detectHash).Return(&usecase.ChainTransaction{
		Hash:  detectHash,
		From:  from.Hex(),
		To:    tokenContract,
		Value: big.NewInt(0),
	}, nil)
	client.EXPECT().TransactionReceipt(gomock.Any(), detectHash).Return(&types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(99),
		Logs: []*types.Log{
			transferLog(tokenContract, from, to, big.NewInt(750)),
			// Same event from a different contract, ignored.
			transferLog("0x9999999999999999999999999999999999999999", from, to, big.NewInt(1)),
			// Malformed data word, skipped without failing detection.
			{
				Address: common.HexToAddress(tokenContract),
				Topics: []common.Hash{
					transferTopic,
					common.BytesToHash(from.Bytes()),
					common.BytesToHash(to.Bytes()),
				},
				Data: []byte{0x01, 0x02},
			},
		},
	}, nil)

	detector := chain.NewDetector(client, tokenContract, detectAssets, nil)

	result, err := detector.Detect(context.Background(), detectHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(result.Transfers))
	}

	transfer := result.Transfers[0]
	if transfer.Kind != domain.AssetToken || transfer.Asset != "USDC" {
		t.Errorf("unexpected classification: kind=%v asset=%s", transfer.Kind, transfer.Asset)
	}
	if transfer.ToAddress != "0xdddddddddddddddddddddddddddddddddddddddd" {
		t.Errorf("recipient = %s", transfer.ToAddress)
	}
	if transfer.Amount.Cmp(big.NewInt(750)) != 0 {
		t.Errorf("amount = %s, want 750", transfer.Amount)
	}
}

func TestDetector_DetectNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockChainClient(ctrl)

	client.EXPECT().TransactionByHash(gomock.Any(), detectHash).Return(nil, domain.ErrTransactionNotFound)

	detector := chain.NewDetector(client, tokenContract, detectAssets, nil)

	if _, err := detector.Detect(context.Background(), detectHash); err != domain.ErrTransactionNotFound {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestDetector_DetectContractCreation(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockChainClient(ctrl)

	// No recipient and no value: nothing to credit.
	client.EXPECT().TransactionByHash(gomock.Any(), detectHash).Return(&usecase.ChainTransaction{
		Hash:  detectHash,
		From:  "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Value: big.NewInt(0),
	}, nil)
	client.EXPECT().TransactionReceipt(gomock.Any(), detectHash).Return(&types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(7),
	}, nil)

	detector := chain.NewDetector(client, tokenContract, detectAssets, nil)

	result, err := detector.Detect(context.Background(), detectHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Transfers) != 0 {
		t.Fatalf("expected no transfers, got %d", len(result.Transfers))
	}
}
