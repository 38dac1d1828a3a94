package mocks

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// MockAddressRepository is a mock implementation of AddressRepository.
type MockAddressRepository struct {
	mu        sync.RWMutex
	addresses map[string]*domain.Address

	CreateFunc                func(ctx context.Context, tx usecase.Transaction, address *domain.Address) error
	GetByAddressFunc          func(ctx context.Context, address string) (*domain.Address, error)
	GetByAddressForUpdateFunc func(ctx context.Context, tx usecase.Transaction, address string) (*domain.Address, error)
	FilterManagedFunc         func(ctx context.Context, addresses []string) (map[string]struct{}, error)
	ListFunc                  func(ctx context.Context, limit, offset int) ([]*domain.Address, error)
	CountFunc                 func(ctx context.Context) (int64, error)
}

func NewMockAddressRepository() *MockAddressRepository {
	return &MockAddressRepository{
		addresses: make(map[string]*domain.Address),
	}
}

// Seed registers an address directly in the mock's state.
func (m *MockAddressRepository) Seed(address *domain.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[address.Address] = address
}

func (m *MockAddressRepository) Create(ctx context.Context, tx usecase.Transaction, address *domain.Address) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, address)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[address.Address] = address
	return nil
}

func (m *MockAddressRepository) GetByAddress(ctx context.Context, address string) (*domain.Address, error) {
	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.addresses[address]; ok {
		return a, nil
	}
	return nil, domain.ErrAddressNotFound
}

func (m *MockAddressRepository) GetByAddressForUpdate(ctx context.Context, tx usecase.Transaction, address string) (*domain.Address, error) {
	if m.GetByAddressForUpdateFunc != nil {
		return m.GetByAddressForUpdateFunc(ctx, tx, address)
	}
	return m.GetByAddress(ctx, address)
}

func (m *MockAddressRepository) FilterManaged(ctx context.Context, addresses []string) (map[string]struct{}, error) {
	if m.FilterManagedFunc != nil {
		return m.FilterManagedFunc(ctx, addresses)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	managed := make(map[string]struct{})
	for _, addr := range addresses {
		if _, ok := m.addresses[addr]; ok {
			managed[addr] = struct{}{}
		}
	}
	return managed, nil
}

func (m *MockAddressRepository) List(ctx context.Context, limit, offset int) ([]*domain.Address, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*domain.Address, 0, len(m.addresses))
	for _, a := range m.addresses {
		list = append(list, a)
	}
	return list, nil
}

func (m *MockAddressRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.addresses)), nil
}

// MockBalanceRepository is a mock implementation of BalanceRepository.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]*domain.Balance

	GetFunc          func(ctx context.Context, address string, chainID int64, asset string) (*domain.Balance, error)
	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction, address string, chainID int64, asset string) (*domain.Balance, error)
	AddFunc          func(ctx context.Context, tx usecase.Transaction, address string, chainID int64, asset string, delta *big.Int, updatedAt time.Time) error
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[string]*domain.Balance),
	}
}

func balanceKey(address string, chainID int64, asset string) string {
	return address + "/" + asset + "/" + big.NewInt(chainID).String()
}

// Seed sets a confirmed balance directly in the mock's state.
func (m *MockBalanceRepository) Seed(address string, chainID int64, asset string, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balanceKey(address, chainID, asset)] = &domain.Balance{
		Address: address,
		ChainID: chainID,
		Asset:   asset,
		Amount:  new(big.Int).Set(amount),
	}
}

func (m *MockBalanceRepository) Get(ctx context.Context, address string, chainID int64, asset string) (*domain.Balance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, address, chainID, asset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.balances[balanceKey(address, chainID, asset)]; ok {
		return b, nil
	}
	return nil, nil
}

func (m *MockBalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, address string, chainID int64, asset string) (*domain.Balance, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, address, chainID, asset)
	}
	return m.Get(ctx, address, chainID, asset)
}

func (m *MockBalanceRepository) Add(ctx context.Context, tx usecase.Transaction, address string, chainID int64, asset string, delta *big.Int, updatedAt time.Time) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, tx, address, chainID, asset, delta, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey(address, chainID, asset)
	b, ok := m.balances[key]
	if !ok {
		b = &domain.Balance{
			Address: address,
			ChainID: chainID,
			Asset:   asset,
			Amount:  big.NewInt(0),
		}
		m.balances[key] = b
	}
	b.Amount = new(big.Int).Add(b.Amount, delta)
	b.UpdatedAt = updatedAt
	return nil
}

// MockTransactionRepository is a mock implementation of
// TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.LedgerTransaction

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, t *domain.LedgerTransaction) error
	UpdateStatusFunc    func(ctx context.Context, tx usecase.Transaction, id string, status domain.TxStatus, updatedAt time.Time) error
	ListPendingFunc     func(ctx context.Context) ([]*domain.LedgerTransaction, error)
	SumPendingSpentFunc func(ctx context.Context, fromAddress string, chainID int64, asset string) (*big.Int, error)
	ListByAddressFunc   func(ctx context.Context, address string, chainID int64, asset string, limit, offset int) ([]*domain.LedgerTransaction, error)
	CountByAddressFunc  func(ctx context.Context, address string, chainID int64, asset string) (int64, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.LedgerTransaction),
	}
}

// Seed stores a transaction directly in the mock's state.
func (m *MockTransactionRepository) Seed(t *domain.LedgerTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
}

// Get returns a stored transaction by ID.
func (m *MockTransactionRepository) Get(id string) *domain.LedgerTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactions[id]
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.LedgerTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TxStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = status
	return nil
}

func (m *MockTransactionRepository) ListPending(ctx context.Context) ([]*domain.LedgerTransaction, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pending []*domain.LedgerTransaction
	for _, t := range m.transactions {
		if t.Status == domain.TxStatusPending {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

func (m *MockTransactionRepository) SumPendingSpent(ctx context.Context, fromAddress string, chainID int64, asset string) (*big.Int, error) {
	if m.SumPendingSpentFunc != nil {
		return m.SumPendingSpentFunc(ctx, fromAddress, chainID, asset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := big.NewInt(0)
	for _, t := range m.transactions {
		if t.Status == domain.TxStatusPending && t.FromAddress == fromAddress && t.ChainID == chainID && t.Asset == asset {
			total.Add(total, t.Spent())
		}
	}
	return total, nil
}

func (m *MockTransactionRepository) ListByAddress(ctx context.Context, address string, chainID int64, asset string, limit, offset int) ([]*domain.LedgerTransaction, error) {
	if m.ListByAddressFunc != nil {
		return m.ListByAddressFunc(ctx, address, chainID, asset, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []*domain.LedgerTransaction
	for _, t := range m.transactions {
		if (t.FromAddress == address || t.ToAddress == address) && t.ChainID == chainID && t.Asset == asset {
			list = append(list, t)
		}
	}
	return list, nil
}

func (m *MockTransactionRepository) CountByAddress(ctx context.Context, address string, chainID int64, asset string) (int64, error) {
	if m.CountByAddressFunc != nil {
		return m.CountByAddressFunc(ctx, address, chainID, asset)
	}
	list, _ := m.ListByAddress(ctx, address, chainID, asset, 0, 0)
	return int64(len(list)), nil
}

// MockProcessedRepository is a mock implementation of ProcessedRepository.
type MockProcessedRepository struct {
	mu      sync.RWMutex
	markers map[string]struct{}

	ExistsFunc func(ctx context.Context, hash string, chainID int64) (bool, error)
	CreateFunc func(ctx context.Context, tx usecase.Transaction, marker *domain.ProcessedTransaction) error
}

func NewMockProcessedRepository() *MockProcessedRepository {
	return &MockProcessedRepository{
		markers: make(map[string]struct{}),
	}
}

func markerKey(hash string, chainID int64) string {
	return hash + "/" + big.NewInt(chainID).String()
}

func (m *MockProcessedRepository) Exists(ctx context.Context, hash string, chainID int64) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, hash, chainID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.markers[markerKey(hash, chainID)]
	return ok, nil
}

func (m *MockProcessedRepository) Create(ctx context.Context, tx usecase.Transaction, marker *domain.ProcessedTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, marker)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := markerKey(marker.Hash, marker.ChainID)
	if _, ok := m.markers[key]; ok {
		return domain.ErrAlreadyProcessed
	}
	m.markers[key] = struct{}{}
	return nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + big.NewInt(int64(m.counter)).String()
}

// MockTransferDetector is a mock implementation of TransferDetector.
type MockTransferDetector struct {
	DetectFunc func(ctx context.Context, hash string) (*domain.DetectionResult, error)
}

func (m *MockTransferDetector) Detect(ctx context.Context, hash string) (*domain.DetectionResult, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, hash)
	}
	return &domain.DetectionResult{Hash: hash}, nil
}

// MockWallet is a mock implementation of Wallet.
type MockWallet struct {
	TransferFunc func(ctx context.Context, fromIndex int64, toAddress, asset string, amount *big.Int) (*domain.LedgerTransaction, error)
}

func (m *MockWallet) Transfer(ctx context.Context, fromIndex int64, toAddress, asset string, amount *big.Int) (*domain.LedgerTransaction, error) {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, fromIndex, toAddress, asset, amount)
	}
	return nil, nil
}

// MockKeyDeriver is a mock implementation of KeyDeriver.
type MockKeyDeriver struct {
	DeriveAddressFunc func(index int64) (string, error)
}

func (m *MockKeyDeriver) DeriveAddress(index int64) (string, error) {
	if m.DeriveAddressFunc != nil {
		return m.DeriveAddressFunc(index)
	}
	return "0xaddr" + big.NewInt(index).String(), nil
}

// MockPendingSink is a mock implementation of PendingSink.
type MockPendingSink struct {
	mu    sync.Mutex
	Added []*domain.LedgerTransaction
}

func (m *MockPendingSink) Add(tx *domain.LedgerTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added = append(m.Added, tx)
}

// MockCache is an in-memory mock implementation of Cache.
type MockCache struct {
	mu    sync.RWMutex
	items map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.items[key]; ok {
		return v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
