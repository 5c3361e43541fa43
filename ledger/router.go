package ledger

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const routerABIJSON = `[
	{
		"inputs": [
			{"name": "amountIn", "type": "uint256"},
			{"name": "amountOutMin", "type": "uint256"},
			{"name": "path", "type": "address[]"},
			{"name": "to", "type": "address"},
			{"name": "deadline", "type": "uint256"}
		],
		"name": "swapExactTokensForTokens",
		"outputs": [{"name": "amounts", "type": "uint256[]"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

var routerABI = mustParseABI(routerABIJSON)

// Router wraps the swap router contract, which executes multi-hop exchanges
// between fungible tokens along a specified path.
type Router struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewRouter binds the swap router at the given address.
func NewRouter(address common.Address, backend bind.ContractBackend) *Router {
	return &Router{
		address:  address,
		contract: bind.NewBoundContract(address, *routerABI, backend, backend, backend),
	}
}

// Address returns the contract address the wrapper is bound to.
func (r *Router) Address() common.Address {
	return r.address
}

// SwapExactTokensForTokens swaps amountIn of path[0] for at least
// amountOutMin of the final path element, sending the output to the to
// address. The transaction reverts on chain if it is not mined by deadline
// (unix seconds).
func (r *Router) SwapExactTokensForTokens(
	opts *bind.TransactOpts,
	amountIn *big.Int,
	amountOutMin *big.Int,
	path []common.Address,
	to common.Address,
	deadline *big.Int,
) (*types.Transaction, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, errors.New("swap requires a positive input amount")
	}
	if len(path) < 2 {
		return nil, errors.New("swap path requires at least two hops")
	}

	return r.contract.Transact(opts, "swapExactTokensForTokens", amountIn, amountOutMin, path, to, deadline)
}
