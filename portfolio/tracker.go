package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
)

// ErrStale is returned by Refresh when the account changed while the refresh
// was in flight. The computed result is discarded rather than applied against
// the wrong account.
var ErrStale = errors.New("refresh superseded by account change")

// NativeBalanceReader reads native asset balances from the ledger.
type NativeBalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// WrappedAssetReader reads wrapped-native token balances.
type WrappedAssetReader interface {
	Address() common.Address
	BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error)
}

// TokenReader reads the configured fungible token's balance and metadata.
type TokenReader interface {
	WrappedAssetReader
	Decimals(opts *bind.CallOpts) (uint8, error)
	Symbol(opts *bind.CallOpts) (string, error)
}

type tokenMeta struct {
	symbol   string
	decimals uint8
}

// Tracker owns the balance snapshot for the account it follows. Refreshes are
// all-or-nothing and keyed by the account they were issued for, so a result
// that completes after the account changed is discarded.
type Tracker struct {
	lggr   logger.Logger
	native NativeBalanceReader
	weth   WrappedAssetReader
	token  TokenReader

	mu      sync.Mutex
	account common.Address
	current *Snapshot
	meta    *tokenMeta
}

// NewTracker creates a Tracker over the given readers.
func NewTracker(lggr logger.Logger, native NativeBalanceReader, weth WrappedAssetReader, token TokenReader) *Tracker {
	return &Tracker{
		lggr:   logger.Named(lggr, "portfolio"),
		native: native,
		weth:   weth,
		token:  token,
	}
}

// SetAccount points the tracker at a new account and drops the snapshot
// derived from the previous one. Token metadata survives an account switch
// since it is a property of the token, not the account; it is dropped by
// Clear when the session ends.
func (t *Tracker) SetAccount(account common.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.account != account {
		t.account = account
		t.current = nil
	}
}

// Clear drops all derived state: the followed account, the snapshot, and the
// cached token metadata.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.account = common.Address{}
	t.current = nil
	t.meta = nil
}

// Current returns the latest snapshot, if one is populated.
func (t *Tracker) Current() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return Snapshot{}, false
	}

	return *t.current, true
}

// Refresh queries all tracked balances for account, concurrently, plus the
// token's symbol and decimals if not already cached. Every query must succeed
// for the refresh to succeed; a single failure fails the whole refresh and
// leaves the previous snapshot untouched. Refresh never changes which account
// the tracker follows; if account is not the tracker's account at entry or at
// completion, the result is discarded and ErrStale is returned.
func (t *Tracker) Refresh(ctx context.Context, account common.Address) (Snapshot, error) {
	t.mu.Lock()
	if t.account != account {
		tracked := t.account
		t.mu.Unlock()
		t.lggr.Debugw("refusing refresh for account no longer tracked",
			"requested", account.Hex(), "current", tracked.Hex())

		return Snapshot{}, ErrStale
	}
	cachedMeta := t.meta
	t.mu.Unlock()

	callOpts := &bind.CallOpts{Context: ctx}

	var (
		wg sync.WaitGroup

		nativeRaw, wrappedRaw, tokenRaw *big.Int
		nativeErr, wrappedErr, tokenErr error
		meta                            tokenMeta
		metaErr                         error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		nativeRaw, nativeErr = t.native.BalanceAt(ctx, account, nil)
	}()
	go func() {
		defer wg.Done()
		wrappedRaw, wrappedErr = t.weth.BalanceOf(callOpts, account)
	}()
	go func() {
		defer wg.Done()
		tokenRaw, tokenErr = t.token.BalanceOf(callOpts, account)
	}()

	if cachedMeta == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meta.symbol, metaErr = t.token.Symbol(callOpts)
			if metaErr != nil {
				return
			}
			meta.decimals, metaErr = t.token.Decimals(callOpts)
		}()
	} else {
		meta = *cachedMeta
	}

	wg.Wait()

	if err := errors.Join(nativeErr, wrappedErr, tokenErr, metaErr); err != nil {
		return Snapshot{}, fmt.Errorf("balance refresh failed for %s: %w", account.Hex(), err)
	}

	snapshot := Snapshot{
		Account: account,
		Native: newBalance(Asset{
			Symbol:   NativeSymbol,
			Decimals: NativeDecimals,
			Native:   true,
		}, nativeRaw),
		Wrapped: newBalance(Asset{
			Contract: t.weth.Address(),
			Symbol:   WrappedSymbol,
			Decimals: NativeDecimals,
		}, wrappedRaw),
		Token: newBalance(Asset{
			Contract: t.token.Address(),
			Symbol:   meta.symbol,
			Decimals: meta.decimals,
		}, tokenRaw),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.meta == nil {
		t.meta = &meta
	}
	if t.account != account {
		t.lggr.Debugw("discarding stale refresh result",
			"refreshed", account.Hex(), "current", t.account.Hex())

		return Snapshot{}, ErrStale
	}
	t.current = &snapshot

	return snapshot, nil
}
