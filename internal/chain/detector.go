package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// transferEventTopic is keccak256("Transfer(address,address,uint256)"),
// the first topic of every standard ERC-20 Transfer log.
var transferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// A well-formed Transfer log carries the event topic plus the indexed
// from and to addresses, and a 32-byte amount word in the data.
const (
	minTransferTopics = 3
	transferDataSize  = 32
)

// Detector extracts value transfers from mined transactions: the
// native-asset transfer when value is positive, plus token transfers
// emitted by the one supported token contract.
type Detector struct {
	client        usecase.ChainClient
	tokenContract common.Address
	assets        domain.AssetRegistry
	logger        *slog.Logger
}

// NewDetector creates a new Detector.
func NewDetector(client usecase.ChainClient, tokenContract string, assets domain.AssetRegistry, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		client:        client,
		tokenContract: common.HexToAddress(tokenContract),
		assets:        assets,
		logger:        logger,
	}
}

// Detect analyzes the transaction behind hash and returns its
// qualifying transfers. A found transaction with no qualifying
// transfers yields an empty result, which callers treat as "no
// deposit". Malformed log entries are skipped individually; they never
// abort extraction of the remaining transfers.
func (d *Detector) Detect(ctx context.Context, hash string) (*domain.DetectionResult, error) {
	tx, err := d.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	receipt, err := d.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}

	result := &domain.DetectionResult{Hash: tx.Hash}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Int64()
	}

	if tx.Value != nil && tx.Value.Sign() > 0 && tx.To != "" {
		result.Transfers = append(result.Transfers, domain.Transfer{
			Kind:        domain.AssetNative,
			Asset:       d.assets.Native,
			FromAddress: tx.From,
			ToAddress:   tx.To,
			Amount:      tx.Value,
		})
	}

	for _, entry := range receipt.Logs {
		if entry.Address != d.tokenContract {
			continue
		}
		if len(entry.Topics) < minTransferTopics || entry.Topics[0] != transferEventTopic {
			continue
		}

		transfer, err := d.parseTransferLog(entry)
		if err != nil {
			d.logger.Warn("skipping malformed transfer log",
				"tx_hash", hash,
				"log_index", entry.Index,
				"error", err,
			)
			continue
		}

		result.Transfers = append(result.Transfers, transfer)
	}

	return result, nil
}

func (d *Detector) parseTransferLog(entry *types.Log) (domain.Transfer, error) {
	if len(entry.Data) != transferDataSize {
		return domain.Transfer{}, fmt.Errorf("transfer data is %d bytes, want %d", len(entry.Data), transferDataSize)
	}

	// Indexed addresses are left-padded to 32 bytes in the topics.
	from := common.BytesToAddress(entry.Topics[1].Bytes())
	to := common.BytesToAddress(entry.Topics[2].Bytes())
	amount := new(big.Int).SetBytes(entry.Data)

	return domain.Transfer{
		Kind:        domain.AssetToken,
		Asset:       d.assets.Token,
		FromAddress: strings.ToLower(from.Hex()),
		ToAddress:   strings.ToLower(to.Hex()),
		Amount:      amount,
	}, nil
}
