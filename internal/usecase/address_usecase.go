package usecase

import (
	"context"
	"time"

	"github.com/iho/chainvault/internal/domain"
)

// AddressUseCase manages the registry of derived addresses. The core
// only ever reads it; generation assigns monotonically increasing
// derivation indices.
type AddressUseCase struct {
	txManager   TransactionManager
	addressRepo AddressRepository
	keys        KeyDeriver
}

// NewAddressUseCase creates a new AddressUseCase.
func NewAddressUseCase(txManager TransactionManager, addressRepo AddressRepository, keys KeyDeriver) *AddressUseCase {
	return &AddressUseCase{
		txManager:   txManager,
		addressRepo: addressRepo,
		keys:        keys,
	}
}

// GenerateAddressesResult reports an address generation run.
type GenerateAddressesResult struct {
	Addresses []string
	Generated int
	Total     int64
}

// GenerateAddresses derives and registers the next quantity addresses.
func (uc *AddressUseCase) GenerateAddresses(ctx context.Context, quantity int) (*GenerateAddressesResult, error) {
	if quantity <= 0 || quantity > MaxAddressesPerGenerate {
		return nil, domain.ErrInvalidAmount
	}

	total, err := uc.addressRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	generated := make([]string, 0, quantity)
	for i := 0; i < quantity; i++ {
		index := total + int64(i)

		derived, err := uc.keys.DeriveAddress(index)
		if err != nil {
			return nil, err
		}

		address := &domain.Address{
			Address:   domain.NormalizeAddress(derived),
			Index:     index,
			CreatedAt: now,
		}

		if err := uc.addressRepo.Create(ctx, tx, address); err != nil {
			return nil, err
		}
		generated = append(generated, address.Address)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &GenerateAddressesResult{
		Addresses: generated,
		Generated: quantity,
		Total:     total + int64(quantity),
	}, nil
}

// ListAddressesResult holds one page of registered addresses.
type ListAddressesResult struct {
	Addresses []string
	Total     int64
	Skip      int
	Limit     int
}

// ListAddresses lists registered addresses in derivation order.
func (uc *AddressUseCase) ListAddresses(ctx context.Context, skip, limit int) (*ListAddressesResult, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxAddressesPerList {
		limit = MaxAddressesPerList
	}

	total, err := uc.addressRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	addresses, err := uc.addressRepo.List(ctx, limit, skip)
	if err != nil {
		return nil, err
	}

	list := make([]string, 0, len(addresses))
	for _, a := range addresses {
		list = append(list, a.Address)
	}

	return &ListAddressesResult{
		Addresses: list,
		Total:     total,
		Skip:      skip,
		Limit:     limit,
	}, nil
}

// GetAddress looks up a single managed address.
func (uc *AddressUseCase) GetAddress(ctx context.Context, address string) (*domain.Address, error) {
	return uc.addressRepo.GetByAddress(ctx, domain.NormalizeAddress(address))
}
