package dto

import (
	"time"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// GenerateAddressesResponse reports the addresses derived by one
// generation request.
type GenerateAddressesResponse struct {
	Success   bool     `json:"success"`
	Network   string   `json:"network"`
	Addresses []string `json:"addresses"`
	Generated int      `json:"generated"`
	Total     int64    `json:"total"`
}

// GenerateAddressesFromResult converts a use case result to a response.
func GenerateAddressesFromResult(network string, r *usecase.GenerateAddressesResult) *GenerateAddressesResponse {
	return &GenerateAddressesResponse{
		Success:   true,
		Network:   network,
		Addresses: r.Addresses,
		Generated: r.Generated,
		Total:     r.Total,
	}
}

// ListAddressesResponse holds one page of managed addresses.
type ListAddressesResponse struct {
	Success   bool     `json:"success"`
	Network   string   `json:"network"`
	Addresses []string `json:"addresses"`
	Total     int64    `json:"total"`
	Skip      int      `json:"skip"`
	Limit     int      `json:"limit"`
}

// ListAddressesFromResult converts a use case result to a response.
func ListAddressesFromResult(network string, r *usecase.ListAddressesResult) *ListAddressesResponse {
	return &ListAddressesResponse{
		Success:   true,
		Network:   network,
		Addresses: r.Addresses,
		Total:     r.Total,
		Skip:      r.Skip,
		Limit:     r.Limit,
	}
}

// AddressResponse represents a managed address in API responses.
type AddressResponse struct {
	Success   bool      `json:"success"`
	Address   string    `json:"address"`
	Index     int64     `json:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// AddressFromDomain converts a domain address to a response.
func AddressFromDomain(a *domain.Address) *AddressResponse {
	return &AddressResponse{
		Success:   true,
		Address:   a.Address,
		Index:     a.Index,
		CreatedAt: a.CreatedAt,
	}
}

// BalanceResponse represents an address balance in API responses.
// Amounts are base units as decimal strings.
type BalanceResponse struct {
	Success          bool   `json:"success"`
	Network          string `json:"network"`
	ChainID          int64  `json:"chain_id"`
	Address          string `json:"address"`
	Asset            string `json:"asset"`
	ConfirmedBalance string `json:"confirmed_balance"`
	AvailableBalance string `json:"available_balance"`
}

// BalanceFromReport converts a use case balance report to a response.
func BalanceFromReport(network string, r *usecase.BalanceReport) *BalanceResponse {
	return &BalanceResponse{
		Success:          true,
		Network:          network,
		ChainID:          r.ChainID,
		Address:          r.Address,
		Asset:            r.Asset,
		ConfirmedBalance: r.Confirmed.String(),
		AvailableBalance: r.Available.String(),
	}
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	Hash        string    `json:"hash"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Amount      string    `json:"amount"`
	Asset       string    `json:"asset"`
	Status      string    `json:"status"`
	Fee         string    `json:"fee,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.LedgerTransaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          t.ID,
		Hash:        t.Hash,
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		Amount:      t.Amount.String(),
		Asset:       t.Asset,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
	}
	if t.Fee != nil && t.Fee.Sign() > 0 {
		resp.Fee = t.Fee.String()
	}

	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.LedgerTransaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// DepositResponse represents one balance credit in API responses.
type DepositResponse struct {
	Address string `json:"address"`
	Asset   string `json:"asset"`
	Amount  string `json:"amount"`
}

// ProcessTransactionResponse reports what processing a transaction
// credited.
type ProcessTransactionResponse struct {
	Success  bool              `json:"success"`
	Network  string            `json:"network"`
	ChainID  int64             `json:"chain_id"`
	TxHash   string            `json:"tx_hash"`
	Deposits []DepositResponse `json:"deposits"`
}

// ProcessTransactionFromResult converts a use case result to a response.
func ProcessTransactionFromResult(network string, r *usecase.ProcessTransactionResult) *ProcessTransactionResponse {
	deposits := make([]DepositResponse, len(r.Deposits))
	for i, d := range r.Deposits {
		deposits[i] = DepositResponse{
			Address: d.Address,
			Asset:   d.Asset,
			Amount:  d.Amount.String(),
		}
	}

	return &ProcessTransactionResponse{
		Success:  true,
		Network:  network,
		ChainID:  r.ChainID,
		TxHash:   r.Hash,
		Deposits: deposits,
	}
}

// WithdrawResponse reports a submitted withdrawal.
type WithdrawResponse struct {
	Success     bool                 `json:"success"`
	Network     string               `json:"network"`
	ChainID     int64                `json:"chain_id"`
	Transaction *TransactionResponse `json:"transaction"`
}

// WithdrawFromDomain converts a submitted transaction to a response.
func WithdrawFromDomain(network string, t *domain.LedgerTransaction) *WithdrawResponse {
	return &WithdrawResponse{
		Success:     true,
		Network:     network,
		ChainID:     t.ChainID,
		Transaction: TransactionFromDomain(t),
	}
}

// HistoryResponse holds one page of transaction history.
type HistoryResponse struct {
	Success      bool                   `json:"success"`
	Network      string                 `json:"network"`
	ChainID      int64                  `json:"chain_id"`
	Address      string                 `json:"address"`
	Asset        string                 `json:"asset"`
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
	Skip         int                    `json:"skip"`
	Limit        int                    `json:"limit"`
}

// HistoryFromResult converts a use case history result to a response.
func HistoryFromResult(network string, r *usecase.HistoryResult) *HistoryResponse {
	return &HistoryResponse{
		Success:      true,
		Network:      network,
		ChainID:      r.ChainID,
		Address:      r.Address,
		Asset:        r.Asset,
		Transactions: TransactionsFromDomain(r.Transactions),
		Total:        r.Total,
		Skip:         r.Skip,
		Limit:        r.Limit,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
