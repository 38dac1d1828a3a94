package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/chainvault/internal/adapter/http/dto"
	"github.com/iho/chainvault/internal/usecase"
)

// TransactionHandler handles deposit processing and history HTTP
// requests.
type TransactionHandler struct {
	depositUC    *usecase.DepositUseCase
	historyUC    *usecase.HistoryUseCase
	network      string
	defaultAsset string
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(depositUC *usecase.DepositUseCase, historyUC *usecase.HistoryUseCase, network, defaultAsset string) *TransactionHandler {
	return &TransactionHandler{
		depositUC:    depositUC,
		historyUC:    historyUC,
		network:      network,
		defaultAsset: defaultAsset,
	}
}

// Process credits the deposits of an inbound chain transaction.
func (h *TransactionHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.depositUC.ProcessTransaction(r.Context(), req.TxHash)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to process transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ProcessTransactionFromResult(h.network, result))
}

// History lists the ledger transactions touching a managed address.
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address", "")
		return
	}

	asset := r.URL.Query().Get("asset")
	if asset == "" {
		asset = h.defaultAsset
	}

	result, err := h.historyUC.History(r.Context(), usecase.HistoryInput{
		Address: address,
		Asset:   asset,
		Skip:    parseIntQuery(r, "skip", 0),
		Limit:   parseIntQuery(r, "limit", 20),
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get history", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromResult(h.network, result))
}
