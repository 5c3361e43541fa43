package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyedProvider should comply with the Provider interface
var _ Provider = (*KeyedProvider)(nil)

// KeyedProvider is a Provider backed by a raw private key held in process.
// It manages a single account normally and never emits external change
// notifications; it exists for headless use where no interactive wallet agent
// is available.
type KeyedProvider struct {
	account    common.Address
	transactor *bind.TransactOpts

	mu         sync.Mutex
	subscribed bool
}

// NewKeyedProvider creates a KeyedProvider from a hex encoded private key and
// the chain ID transactions will be signed for.
func NewKeyedProvider(privKeyHex string, chainID *big.Int) (*KeyedProvider, error) {
	privKey, err := crypto.HexToECDSA(privKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key to ECDSA: %w", err)
	}

	transactor, err := bind.NewKeyedTransactorWithChainID(privKey, chainID)
	if err != nil {
		return nil, err
	}

	return &KeyedProvider{
		account:    crypto.PubkeyToAddress(privKey.PublicKey),
		transactor: transactor,
	}, nil
}

// RequestAccounts returns the single managed account.
func (p *KeyedProvider) RequestAccounts(_ context.Context) ([]common.Address, error) {
	return []common.Address{p.account}, nil
}

// Transactor returns the signing authority for the managed account.
func (p *KeyedProvider) Transactor(_ context.Context, account common.Address) (*bind.TransactOpts, error) {
	if account != p.account {
		return nil, fmt.Errorf("account %s is not managed by this provider", account.Hex())
	}

	return p.transactor, nil
}

// Subscribe records the subscription. The provider never emits events, but
// the at-most-once contract is still enforced.
func (p *KeyedProvider) Subscribe(_ Events) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subscribed {
		return errors.New("already subscribed to provider events")
	}
	p.subscribed = true

	return nil
}
