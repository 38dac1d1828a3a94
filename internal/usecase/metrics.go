package usecase

import (
	"errors"

	"github.com/iho/chainvault/internal/domain"
)

// metricErrorType buckets an error for counter labels.
func metricErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, domain.ErrAddressNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidTxHash),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnsupportedAsset):
		return "invalid_request"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrChainUnavailable):
		return "chain_unavailable"
	default:
		return "internal"
	}
}
