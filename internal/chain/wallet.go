package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// erc20TransferSelector is the 4-byte selector of
// transfer(address,uint256).
var erc20TransferSelector = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]

// Wallet builds, signs and broadcasts outgoing transfers for managed
// addresses. The send path dispatches on asset kind: a plain value
// transfer for the native asset, a contract call for the token.
type Wallet struct {
	client        usecase.ChainClient
	keys          *Keyring
	idGen         usecase.IDGenerator
	assets        domain.AssetRegistry
	tokenContract common.Address
	chainID       *big.Int
	gasMargin     decimal.Decimal
}

// NewWallet creates a new Wallet. gasMargin scales the suggested gas
// price, e.g. 1.2 for a 20% safety margin.
func NewWallet(
	client usecase.ChainClient,
	keys *Keyring,
	idGen usecase.IDGenerator,
	assets domain.AssetRegistry,
	tokenContract string,
	chainID int64,
	gasMargin decimal.Decimal,
) *Wallet {
	return &Wallet{
		client:        client,
		keys:          keys,
		idGen:         idGen,
		assets:        assets,
		tokenContract: common.HexToAddress(tokenContract),
		chainID:       big.NewInt(chainID),
		gasMargin:     gasMargin,
	}
}

// Transfer signs and broadcasts one outgoing transfer from the managed
// address at fromIndex, returning its pending ledger record. No
// balance is touched here; settlement belongs to the reconciler.
func (w *Wallet) Transfer(ctx context.Context, fromIndex int64, toAddress, asset string, amount *big.Int) (*domain.LedgerTransaction, error) {
	kind, err := w.assets.Kind(asset)
	if err != nil {
		return nil, err
	}

	key, err := w.keys.DeriveKey(fromIndex)
	if err != nil {
		return nil, err
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := w.client.PendingNonceAt(ctx, from.Hex())
	if err != nil {
		return nil, err
	}

	gasPrice, err := w.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	gasLimit := kind.GasLimit()
	to := common.HexToAddress(toAddress)

	var unsigned *types.Transaction
	switch kind {
	case domain.AssetToken:
		unsigned = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &w.tokenContract,
			Value:    big.NewInt(0),
			Gas:      uint64(gasLimit),
			GasPrice: gasPrice,
			Data:     tokenTransferCalldata(to, amount),
		})
	default:
		unsigned = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &to,
			Value:    amount,
			Gas:      uint64(gasLimit),
			GasPrice: gasPrice,
		})
	}

	signed, err := types.SignTx(unsigned, types.NewEIP155Signer(w.chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}

	fee := new(big.Int).Mul(gasPrice, big.NewInt(gasLimit))

	return &domain.LedgerTransaction{
		ID:          w.idGen.Generate(),
		Hash:        strings.ToLower(signed.Hash().Hex()),
		FromAddress: strings.ToLower(from.Hex()),
		ToAddress:   strings.ToLower(to.Hex()),
		Amount:      amount,
		ChainID:     w.chainID.Int64(),
		Asset:       asset,
		Status:      domain.TxStatusPending,
		GasUsed:     gasLimit,
		GasPrice:    gasPrice,
		Fee:         fee,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// gasPrice returns the suggested price scaled by the safety margin.
func (w *Wallet) gasPrice(ctx context.Context) (*big.Int, error) {
	suggested, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	scaled := decimal.NewFromBigInt(suggested, 0).Mul(w.gasMargin)

	return scaled.BigInt(), nil
}

func tokenTransferCalldata(to common.Address, amount *big.Int) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, erc20TransferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data
}
