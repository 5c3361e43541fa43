// Package portfolio derives the set of tracked balances for the connected
// account: the native asset, the wrapped-native token, and one configured
// fungible token. Snapshots are rebuilt wholesale on every refresh, never
// patched in place.
package portfolio

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dappsuite/wallet-orchestrator/internal/units"
)

const (
	// NativeDecimals is the decimal precision of the native asset and its
	// wrapped form.
	NativeDecimals uint8 = 18

	// NativeSymbol is the display symbol of the native asset, which has no
	// contract address.
	NativeSymbol = "ETH"

	// WrappedSymbol is the display symbol of the wrapped-native token.
	WrappedSymbol = "WETH"
)

// Asset identifies a tracked asset. Contract is the zero address for the
// native asset. Immutable once resolved.
type Asset struct {
	Contract common.Address
	Symbol   string
	Decimals uint8
	Native   bool
}

// Balance pairs an asset with its raw base unit amount and the derived
// display string. Always derived, never mutated.
type Balance struct {
	Asset   Asset
	Raw     *big.Int
	Display string
}

func newBalance(asset Asset, raw *big.Int) Balance {
	return Balance{
		Asset:   asset,
		Raw:     raw,
		Display: units.ToDisplay(raw, asset.Decimals),
	}
}

// Snapshot is a fully populated view of the three tracked balances for one
// account. Partial snapshots are not a valid state; a failed refresh emits no
// snapshot at all.
type Snapshot struct {
	Account common.Address
	Native  Balance
	Wrapped Balance
	Token   Balance
}
