package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const wethABIJSON = `[
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
		"name": "deposit",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"name": "wad", "type": "uint256"}],
		"name": "withdraw",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

var wethABI = mustParseABI(wethABIJSON)

// WETH wraps the wrapped-native asset contract: an ERC20 balance surface plus
// the 1:1 deposit and withdraw operations.
type WETH struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewWETH binds the wrapped-native contract at the given address.
func NewWETH(address common.Address, backend bind.ContractBackend) *WETH {
	return &WETH{
		address:  address,
		contract: bind.NewBoundContract(address, *wethABI, backend, backend, backend),
	}
}

// Address returns the contract address the wrapper is bound to.
func (w *WETH) Address() common.Address {
	return w.address
}

// BalanceOf returns the wrapped balance of account.
func (w *WETH) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []any
	if err := w.contract.Call(opts, &out, "balanceOf", account); err != nil {
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

// Deposit wraps native asset into the token. The amount to wrap is carried as
// the transaction value; opts.Value must be set by the caller.
func (w *WETH) Deposit(opts *bind.TransactOpts) (*types.Transaction, error) {
	if opts.Value == nil || opts.Value.Sign() <= 0 {
		return nil, errors.New("deposit requires a positive value")
	}

	return w.contract.Transact(opts, "deposit")
}

// Withdraw unwraps wad base units of the token back into native asset.
func (w *WETH) Withdraw(opts *bind.TransactOpts, wad *big.Int) (*types.Transaction, error) {
	if wad == nil || wad.Sign() <= 0 {
		return nil, errors.New("withdraw requires a positive amount")
	}

	return w.contract.Transact(opts, "withdraw", wad)
}
