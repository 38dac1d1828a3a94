package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/chainvault/internal/adapter/http/dto"
	"github.com/iho/chainvault/internal/usecase"
)

// BalanceHandler handles balance query HTTP requests.
type BalanceHandler struct {
	balanceUC    *usecase.BalanceUseCase
	network      string
	defaultAsset string
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC *usecase.BalanceUseCase, network, defaultAsset string) *BalanceHandler {
	return &BalanceHandler{
		balanceUC:    balanceUC,
		network:      network,
		defaultAsset: defaultAsset,
	}
}

// Get returns confirmed and available balance for a managed address.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address", "")
		return
	}

	asset := r.URL.Query().Get("asset")
	if asset == "" {
		asset = h.defaultAsset
	}

	report, err := h.balanceUC.GetBalance(r.Context(), address, asset)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromReport(h.network, report))
}
