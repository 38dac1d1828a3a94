package domain

import "errors"

var (
	// Address errors
	ErrAddressNotFound = errors.New("address not found")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found on chain")
	ErrAlreadyProcessed    = errors.New("transaction has already been processed")
	ErrInvalidTxHash       = errors.New("invalid transaction hash")

	// Withdrawal errors
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnsupportedAsset  = errors.New("unsupported asset")

	// Chain errors
	ErrChainUnavailable = errors.New("chain RPC unavailable")

	// Cache errors
	ErrCacheMiss = errors.New("cache miss")
)
