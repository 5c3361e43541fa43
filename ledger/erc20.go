package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ABIJSON = `[
	{
		"inputs": [{"name": "", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "decimals",
		"outputs": [{"name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "symbol",
		"outputs": [{"name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(abiJSON string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic("failed to parse ABI: " + err.Error())
	}

	return &parsed
}

// ERC20 is a read-only wrapper over a fungible token contract.
type ERC20 struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewERC20 binds an ERC20 token at the given address.
func NewERC20(address common.Address, backend bind.ContractBackend) *ERC20 {
	return &ERC20{
		address:  address,
		contract: bind.NewBoundContract(address, *erc20ABI, backend, backend, backend),
	}
}

// Address returns the contract address the wrapper is bound to.
func (t *ERC20) Address() common.Address {
	return t.address
}

// BalanceOf returns the token balance of account.
func (t *ERC20) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []any
	if err := t.contract.Call(opts, &out, "balanceOf", account); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("balanceOf returned no data")
	}

	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf: expected *big.Int, got %T", out[0])
	}

	return bal, nil
}

// Decimals returns the token's decimal precision.
func (t *ERC20) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []any
	if err := t.contract.Call(opts, &out, "decimals"); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, errors.New("decimals returned no data")
	}

	dec, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: expected uint8, got %T", out[0])
	}

	return dec, nil
}

// Symbol returns the token's display symbol.
func (t *ERC20) Symbol(opts *bind.CallOpts) (string, error) {
	var out []any
	if err := t.contract.Call(opts, &out, "symbol"); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", errors.New("symbol returned no data")
	}

	sym, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("symbol: expected string, got %T", out[0])
	}

	return sym, nil
}
