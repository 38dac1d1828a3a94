package domain

import "math/big"

// AssetKind distinguishes the native coin from contract-backed tokens.
// Gas constants and the send path differ per kind; dispatch happens on
// this tag rather than on types.
type AssetKind int

const (
	AssetNative AssetKind = iota
	AssetToken
)

// Gas units charged per transfer kind. Fixed constants, no live
// estimation: a plain value transfer is exactly 21000, and an ERC-20
// transfer typically lands between 50k and 65k, so the upper bound is
// used.
const (
	GasLimitNative int64 = 21000
	GasLimitToken  int64 = 65000
)

// GasLimit returns the fixed gas units for the asset kind.
func (k AssetKind) GasLimit() int64 {
	if k == AssetToken {
		return GasLimitToken
	}
	return GasLimitNative
}

// AssetRegistry maps the supported asset symbols to their kind: the
// chain's native coin and the one configured token contract.
type AssetRegistry struct {
	Native string
	Token  string
}

// Kind resolves an asset symbol, failing with ErrUnsupportedAsset for
// anything outside the registry.
func (r AssetRegistry) Kind(asset string) (AssetKind, error) {
	switch asset {
	case r.Native:
		return AssetNative, nil
	case r.Token:
		return AssetToken, nil
	default:
		return 0, ErrUnsupportedAsset
	}
}

// Transfer is one value movement extracted from a chain transaction,
// before any managed-address filtering.
type Transfer struct {
	Kind        AssetKind
	Asset       string
	FromAddress string
	ToAddress   string
	Amount      *big.Int
}

// DetectionResult holds every qualifying transfer found in one chain
// transaction: at most one native transfer plus any token transfers
// from the supported contract. Empty Transfers is a valid outcome.
type DetectionResult struct {
	Hash        string
	BlockNumber int64
	Transfers   []Transfer
}
