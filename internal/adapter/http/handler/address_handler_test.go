package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/chainvault/internal/adapter/http/dto"
	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
	"github.com/iho/chainvault/internal/usecase/mocks"
)

func newAddressHandler(addressRepo *mocks.MockAddressRepository) *AddressHandler {
	uc := usecase.NewAddressUseCase(mocks.NewMockTransactionManager(), addressRepo, &mocks.MockKeyDeriver{})
	return NewAddressHandler(uc, "sepolia")
}

func TestAddressHandler_Generate_Success(t *testing.T) {
	h := newAddressHandler(mocks.NewMockAddressRepository())

	body, _ := json.Marshal(dto.GenerateAddressesRequest{Quantity: 2})
	req := httptest.NewRequest(http.MethodPost, "/addresses", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.GenerateAddressesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Network != "sepolia" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Generated != 2 || len(resp.Addresses) != 2 {
		t.Fatalf("expected 2 addresses, got %+v", resp)
	}
}

func TestAddressHandler_Generate_InvalidBody(t *testing.T) {
	h := newAddressHandler(mocks.NewMockAddressRepository())

	req := httptest.NewRequest(http.MethodPost, "/addresses", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAddressHandler_Generate_InvalidQuantity(t *testing.T) {
	h := newAddressHandler(mocks.NewMockAddressRepository())

	body, _ := json.Marshal(dto.GenerateAddressesRequest{Quantity: 0})
	req := httptest.NewRequest(http.MethodPost, "/addresses", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAddressHandler_Get(t *testing.T) {
	addressRepo := mocks.NewMockAddressRepository()
	addressRepo.Seed(&domain.Address{Address: "0xaddr0", Index: 0})
	h := newAddressHandler(addressRepo)

	req := httptest.NewRequest(http.MethodGet, "/addresses/0xaddr0", nil)
	req = setChiURLParam(req, "address", "0xaddr0")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAddressHandler_Get_NotFound(t *testing.T) {
	h := newAddressHandler(mocks.NewMockAddressRepository())

	req := httptest.NewRequest(http.MethodGet, "/addresses/0xmissing", nil)
	req = setChiURLParam(req, "address", "0xmissing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAddressHandler_List(t *testing.T) {
	addressRepo := mocks.NewMockAddressRepository()
	addressRepo.Seed(&domain.Address{Address: "0xaddr0", Index: 0})
	h := newAddressHandler(addressRepo)

	req := httptest.NewRequest(http.MethodGet, "/addresses?limit=10", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAddressesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected total 1, got %d", resp.Total)
	}
}
