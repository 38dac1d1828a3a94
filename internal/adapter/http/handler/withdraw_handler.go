package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/chainvault/internal/adapter/http/dto"
	"github.com/iho/chainvault/internal/usecase"
)

// WithdrawHandler handles withdrawal HTTP requests.
type WithdrawHandler struct {
	withdrawUC *usecase.WithdrawUseCase
	network    string
}

// NewWithdrawHandler creates a new WithdrawHandler.
func NewWithdrawHandler(withdrawUC *usecase.WithdrawUseCase, network string) *WithdrawHandler {
	return &WithdrawHandler{withdrawUC: withdrawUC, network: network}
}

// Submit broadcasts an outgoing transfer.
func (h *WithdrawHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	tx, err := h.withdrawUC.Submit(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to submit withdrawal", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.WithdrawFromDomain(h.network, tx))
}
