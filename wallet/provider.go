// Package wallet owns the wallet connection lifecycle: which account is
// connected and the authority to sign transactions on its behalf. The wallet
// provider itself is an external agent reached through the narrow Provider
// interface.
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Events are the external change notifications a provider delivers
// asynchronously: at most one delivery per real external change, order
// preserved. Either callback may be nil.
type Events struct {
	// AccountsChanged is invoked with the current ordered account list. An
	// empty list means the wallet disconnected.
	AccountsChanged func(accounts []common.Address)

	// ChainChanged is invoked when the active network changes.
	ChainChanged func()
}

// Provider is the capability interface over an external wallet provider.
// Anything beyond these operations is undocumented provider behavior and must
// not be relied on.
type Provider interface {
	// RequestAccounts asks the provider for authorized accounts, prompting
	// the user if needed. Returns the ordered account list.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Transactor returns the signing authority for the given account,
	// usable to submit transactions on its behalf.
	Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error)

	// Subscribe registers for external change notifications. Must be called
	// at most once; re-registering is undefined provider behavior.
	Subscribe(events Events) error
}
