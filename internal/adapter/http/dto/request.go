package dto

import (
	"math/big"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// GenerateAddressesRequest represents a request to derive new deposit
// addresses.
type GenerateAddressesRequest struct {
	Quantity int `json:"quantity"`
}

// ProcessTransactionRequest represents a request to process an inbound
// chain transaction.
type ProcessTransactionRequest struct {
	TxHash string `json:"tx_hash"`
}

// WithdrawRequest represents a request to submit an outgoing transfer.
// Amount is the value in base units as a decimal string.
type WithdrawRequest struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Asset       string `json:"asset"`
	Amount      string `json:"amount"`
}

// ToUseCaseInput converts to use case input. A malformed or
// non-positive amount surfaces as domain.ErrInvalidAmount.
func (r *WithdrawRequest) ToUseCaseInput() (usecase.SubmitWithdrawalInput, error) {
	amount, ok := new(big.Int).SetString(r.Amount, 10)
	if !ok {
		return usecase.SubmitWithdrawalInput{}, domain.ErrInvalidAmount
	}

	return usecase.SubmitWithdrawalInput{
		FromAddress: r.FromAddress,
		ToAddress:   r.ToAddress,
		Asset:       r.Asset,
		Amount:      amount,
	}, nil
}
