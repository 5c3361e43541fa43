// Package orchestrator executes the state-changing wallet operations: wrap,
// unwrap, and swap. Each operation runs the same four stage machine —
// validate, submit, await confirmation, refresh and report — and classifies
// every failure into a closed outcome taxonomy.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/dappsuite/wallet-orchestrator/internal/units"
	"github.com/dappsuite/wallet-orchestrator/notify"
	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
	"github.com/dappsuite/wallet-orchestrator/portfolio"
	"github.com/dappsuite/wallet-orchestrator/wallet"
)

// swapDeadlineSecs is how far in the future a swap's on-chain deadline is
// set, relative to submission time.
const swapDeadlineSecs = 1200

var (
	// ErrNotReady indicates an operation's preconditions were not met (no
	// active session or empty input). The operation is a no-op; callers are
	// expected to disable the action while preconditions fail, so this is
	// not reported through the sink.
	ErrNotReady = errors.New("operation preconditions not met")

	// ErrMinOutRequired indicates a swap was attempted without a positive
	// minimum output amount. Executing a swap with no slippage protection
	// is not supported.
	ErrMinOutRequired = errors.New("swap minimum output amount is required")
)

// SessionSource answers reads of the current wallet session.
type SessionSource interface {
	Current() wallet.Session
}

// Confirmer waits for a submitted transaction to be mined.
type Confirmer interface {
	Confirm(ctx context.Context, tx *types.Transaction, from common.Address) (uint64, error)
}

// WrappedAsset is the write surface of the wrapped-native contract.
type WrappedAsset interface {
	Address() common.Address
	Deposit(opts *bind.TransactOpts) (*types.Transaction, error)
	Withdraw(opts *bind.TransactOpts, wad *big.Int) (*types.Transaction, error)
}

// SwapRouter is the write surface of the swap router contract.
type SwapRouter interface {
	SwapExactTokensForTokens(
		opts *bind.TransactOpts,
		amountIn *big.Int,
		amountOutMin *big.Int,
		path []common.Address,
		to common.Address,
		deadline *big.Int,
	) (*types.Transaction, error)
}

// BalanceRefresher rebuilds the balance snapshot after a confirmed
// transaction.
type BalanceRefresher interface {
	Refresh(ctx context.Context, account common.Address) (portfolio.Snapshot, error)
}

// Orchestrator executes wrap, unwrap, and swap under the session's signing
// authority.
type Orchestrator struct {
	lggr     logger.Logger
	sessions SessionSource
	confirm  Confirmer
	weth     WrappedAsset
	router   SwapRouter
	balances BalanceRefresher
	sink     notify.Sink

	now func() time.Time
}

// New creates an Orchestrator.
func New(
	lggr logger.Logger,
	sessions SessionSource,
	confirm Confirmer,
	weth WrappedAsset,
	router SwapRouter,
	balances BalanceRefresher,
	sink notify.Sink,
) *Orchestrator {
	return &Orchestrator{
		lggr:     logger.Named(lggr, "orchestrator"),
		sessions: sessions,
		confirm:  confirm,
		weth:     weth,
		router:   router,
		balances: balances,
		sink:     sink,
		now:      time.Now,
	}
}

// Wrap converts amount (a decimal native asset string) into the wrapped
// token by depositing it with the amount attached as native payment. On
// confirmation the balance snapshot is refreshed before success is reported.
// Returns ErrNotReady or a malformed amount error when nothing was submitted.
func (o *Orchestrator) Wrap(ctx context.Context, amount string) (Outcome, error) {
	session := o.sessions.Current()

	value, err := o.validateAmount(session, amount)
	if err != nil {
		return Outcome{}, err
	}

	opID := uuid.NewString()
	o.lggr.Infow("submitting wrap", "op", opID, "account", session.Account.Hex(), "amount", amount)

	opts := submitOpts(ctx, session)
	opts.Value = value

	tx, err := o.weth.Deposit(opts)
	if err != nil {
		return o.reportFailure(opID, "Wrap", err), nil
	}

	return o.confirmAndRefresh(ctx, opID, session.Account, tx,
		fmt.Sprintf("Wrapped %s %s successfully!", amount, portfolio.NativeSymbol)), nil
}

// Unwrap redeems amount of the wrapped token back into the native asset.
func (o *Orchestrator) Unwrap(ctx context.Context, amount string) (Outcome, error) {
	session := o.sessions.Current()

	value, err := o.validateAmount(session, amount)
	if err != nil {
		return Outcome{}, err
	}

	opID := uuid.NewString()
	o.lggr.Infow("submitting unwrap", "op", opID, "account", session.Account.Hex(), "amount", amount)

	tx, err := o.weth.Withdraw(submitOpts(ctx, session), value)
	if err != nil {
		return o.reportFailure(opID, "Unwrap", err), nil
	}

	return o.confirmAndRefresh(ctx, opID, session.Account, tx,
		fmt.Sprintf("Unwrapped %s %s successfully!", amount, portfolio.WrappedSymbol)), nil
}

// Swap exchanges amount of the wrapped token for target along the path
// [wrapped-native, target], with the connected account as both payer and
// recipient and an on-chain deadline of submission time plus 1200 seconds.
// minOut is the required minimum output in the target token's base units;
// a swap without slippage protection is rejected.
func (o *Orchestrator) Swap(ctx context.Context, amount string, target common.Address, minOut *big.Int) (Outcome, error) {
	session := o.sessions.Current()
	if target == (common.Address{}) {
		return Outcome{}, fmt.Errorf("%w: target token address is empty", ErrNotReady)
	}

	value, err := o.validateAmount(session, amount)
	if err != nil {
		return Outcome{}, err
	}

	if minOut == nil || minOut.Sign() <= 0 {
		o.sink.Notify(notify.SeverityError, "Swap requires a minimum output amount.")

		return Outcome{}, ErrMinOutRequired
	}

	opID := uuid.NewString()
	deadline := big.NewInt(o.now().Unix() + swapDeadlineSecs)
	path := []common.Address{o.weth.Address(), target}

	o.lggr.Infow("submitting swap",
		"op", opID,
		"account", session.Account.Hex(),
		"amount", amount,
		"target", target.Hex(),
		"deadline", deadline.String(),
	)

	tx, err := o.router.SwapExactTokensForTokens(
		submitOpts(ctx, session), value, minOut, path, session.Account, deadline)
	if err != nil {
		return o.reportFailure(opID, "Swap", err), nil
	}

	return o.confirmAndRefresh(ctx, opID, session.Account, tx, "Swap completed successfully!"), nil
}

// validateAmount enforces the shared preconditions: an active session and a
// non-empty, positive amount. An inactive session or empty amount is a no-op
// (ErrNotReady); a malformed amount is surfaced through the sink and returned.
func (o *Orchestrator) validateAmount(session wallet.Session, amount string) (*big.Int, error) {
	if !session.Active() {
		return nil, fmt.Errorf("%w: no active session", ErrNotReady)
	}
	if strings.TrimSpace(amount) == "" {
		return nil, fmt.Errorf("%w: amount is empty", ErrNotReady)
	}

	value, err := units.ToBaseUnits(amount, portfolio.NativeDecimals)
	if err != nil {
		o.sink.Notify(notify.SeverityError, fmt.Sprintf("Invalid amount %q.", amount))

		return nil, err
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrNotReady)
	}

	return value, nil
}

// confirmAndRefresh runs the final two stages: await confirmation, then
// rebuild the balance snapshot, then report. Success is reported only after
// the refresh completes, so the user is never told success while displayed
// balances are still stale. A refresh failure after a confirmed transaction
// is reported separately and never retracts the success.
func (o *Orchestrator) confirmAndRefresh(
	ctx context.Context, opID string, account common.Address, tx *types.Transaction, successMsg string,
) Outcome {
	blockNum, err := o.confirm.Confirm(ctx, tx, account)
	if err != nil {
		return o.reportFailure(opID, "Transaction", err)
	}

	o.lggr.Infow("transaction confirmed", "op", opID, "tx", tx.Hash().Hex(), "block", blockNum)

	_, refreshErr := o.balances.Refresh(ctx, account)

	o.sink.Notify(notify.SeveritySuccess, successMsg)

	if refreshErr != nil && !errors.Is(refreshErr, portfolio.ErrStale) {
		o.lggr.Errorw("balance refresh failed after confirmed transaction",
			"op", opID, "account", account.Hex(), "err", refreshErr)
		o.sink.Notify(notify.SeverityError, "Transaction confirmed, but balances could not be refreshed.")
	}

	return Outcome{Kind: OutcomeSuccess, Detail: tx.Hash().Hex()}
}

func (o *Orchestrator) reportFailure(opID, op string, err error) Outcome {
	outcome := classifyFailure(err)

	o.lggr.Warnw("operation failed",
		"op", opID, "kind", string(outcome.Kind), "err", err)

	switch outcome.Kind {
	case OutcomeRejectedByUser:
		o.sink.Notify(notify.SeverityError, op+" was rejected in the wallet.")
	case OutcomeInsufficientFunds:
		o.sink.Notify(notify.SeverityError, "Insufficient funds to cover the amount plus network fee.")
	default:
		o.sink.Notify(notify.SeverityError, fmt.Sprintf("%s failed: %s", op, outcome.Detail))
	}

	return outcome
}

// submitOpts clones the session's signing authority with the caller's
// context attached, leaving the shared authority untouched.
func submitOpts(ctx context.Context, session wallet.Session) *bind.TransactOpts {
	opts := *session.Authority
	opts.Context = ctx

	return &opts
}
