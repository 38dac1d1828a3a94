package usecase

// Request limits, matching the public API contract.
const (
	MaxAddressesPerGenerate = 100
	MaxAddressesPerList     = 100
	MaxTransactionsPerList  = 100
)
