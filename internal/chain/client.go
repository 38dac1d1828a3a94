// Package chain holds the Ethereum-facing pieces: the RPC client,
// transfer detection, deterministic key derivation and the signing
// wallet.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/infrastructure/metrics"
	"github.com/iho/chainvault/internal/usecase"
)

// Client implements usecase.ChainClient over an ethclient connection.
type Client struct {
	eth     *ethclient.Client
	signer  types.Signer
	metrics *metrics.Metrics
}

// Dial connects to the chain RPC endpoint and verifies it serves the
// expected chain.
func Dial(ctx context.Context, rpcURL string, chainID int64) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain RPC: %w", err)
	}

	remoteID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to query chain ID: %w", err)
	}
	if remoteID.Int64() != chainID {
		eth.Close()
		return nil, fmt.Errorf("chain ID mismatch: endpoint serves %d, configured %d", remoteID.Int64(), chainID)
	}

	return NewClient(eth, chainID), nil
}

// NewClient wraps an existing ethclient connection.
func NewClient(eth *ethclient.Client, chainID int64) *Client {
	return &Client{
		eth:    eth,
		signer: types.LatestSignerForChainID(big.NewInt(chainID)),
	}
}

// WithMetrics enables per-method RPC metrics.
func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	return c
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) record(method string, err error) {
	if c.metrics == nil {
		return
	}

	c.metrics.ChainRequests.WithLabelValues(method).Inc()
	if err != nil {
		c.metrics.ChainErrors.WithLabelValues(method).Inc()
	}
}

// TransactionByHash fetches a mined transaction. Unknown and
// still-pending hashes both fail with domain.ErrTransactionNotFound:
// the deposit path only handles already-mined transactions.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (*usecase.ChainTransaction, error) {
	tx, pending, err := c.eth.TransactionByHash(ctx, common.HexToHash(hash))
	c.record("transaction_by_hash", err)
	if err != nil {
		return nil, mapRPCError(err)
	}
	if pending {
		return nil, domain.ErrTransactionNotFound
	}

	from, err := types.Sender(c.signer, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender of %s: %w", hash, err)
	}

	to := ""
	if tx.To() != nil {
		to = strings.ToLower(tx.To().Hex())
	}

	return &usecase.ChainTransaction{
		Hash:  strings.ToLower(tx.Hash().Hex()),
		From:  strings.ToLower(from.Hex()),
		To:    to,
		Value: tx.Value(),
	}, nil
}

// TransactionReceipt fetches the execution receipt for a hash.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, common.HexToHash(hash))
	c.record("transaction_receipt", err)
	if err != nil {
		return nil, mapRPCError(err)
	}
	return receipt, nil
}

// PendingNonceAt returns the next nonce for an address.
func (c *Client) PendingNonceAt(ctx context.Context, address string) (uint64, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, common.HexToAddress(address))
	c.record("pending_nonce_at", err)
	if err != nil {
		return 0, mapRPCError(err)
	}
	return nonce, nil
}

// SuggestGasPrice returns the endpoint's suggested gas price.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.eth.SuggestGasPrice(ctx)
	c.record("suggest_gas_price", err)
	if err != nil {
		return nil, mapRPCError(err)
	}
	return price, nil
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	err := c.eth.SendTransaction(ctx, tx)
	c.record("send_transaction", err)
	if err != nil {
		return mapRPCError(err)
	}
	return nil
}

func mapRPCError(err error) error {
	if errors.Is(err, ethereum.NotFound) {
		return domain.ErrTransactionNotFound
	}
	return fmt.Errorf("%w: %v", domain.ErrChainUnavailable, err)
}
