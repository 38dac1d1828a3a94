package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/chainvault/internal/adapter/http/dto"
	"github.com/iho/chainvault/internal/usecase"
)

// AddressHandler handles address-related HTTP requests.
type AddressHandler struct {
	addressUC *usecase.AddressUseCase
	network   string
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(addressUC *usecase.AddressUseCase, network string) *AddressHandler {
	return &AddressHandler{addressUC: addressUC, network: network}
}

// Generate derives and registers new deposit addresses.
func (h *AddressHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateAddressesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.addressUC.GenerateAddresses(r.Context(), req.Quantity)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to generate addresses", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.GenerateAddressesFromResult(h.network, result))
}

// List lists managed addresses with pagination.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := parseIntQuery(r, "skip", 0)
	limit := parseIntQuery(r, "limit", 20)

	result, err := h.addressUC.ListAddresses(r.Context(), skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list addresses", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAddressesFromResult(h.network, result))
}

// Get retrieves a single managed address.
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address", "")
		return
	}

	a, err := h.addressUC.GetAddress(r.Context(), address)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get address", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AddressFromDomain(a))
}
