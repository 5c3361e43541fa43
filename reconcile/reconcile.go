// Package reconcile drives re-synchronization of derived state when the
// wallet provider reports external changes: an account switch resynchronizes
// the balance snapshot, a disconnect clears it, and a network change triggers
// a full session reinitialization.
package reconcile

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
	"github.com/dappsuite/wallet-orchestrator/portfolio"
	"github.com/dappsuite/wallet-orchestrator/wallet"
)

// SessionConnector re-runs the connect sequence after a network change.
type SessionConnector interface {
	Connect(ctx context.Context) (wallet.Session, error)
}

// BalanceTracker is the derived state the reconciler keeps in sync.
type BalanceTracker interface {
	SetAccount(account common.Address)
	Clear()
	Refresh(ctx context.Context, account common.Address) (portfolio.Snapshot, error)
}

// Reconciler should comply with the wallet.Handler interface
var _ wallet.Handler = (*Reconciler)(nil)

// Reconciler subscribes to session transitions and reconciles the balance
// tracker against them. Callbacks run on the goroutine delivering the
// provider notification; ctx bounds the ledger calls they issue.
type Reconciler struct {
	ctx      context.Context
	lggr     logger.Logger
	sessions SessionConnector
	tracker  BalanceTracker
}

// New creates a Reconciler. Register it with wallet.Service.SetHandler before
// connecting.
func New(ctx context.Context, lggr logger.Logger, sessions SessionConnector, tracker BalanceTracker) *Reconciler {
	return &Reconciler{
		ctx:      ctx,
		lggr:     logger.Named(lggr, "reconcile"),
		sessions: sessions,
		tracker:  tracker,
	}
}

// AccountChanged points the tracker at the new account and rebuilds the
// snapshot from scratch. A refresh failure leaves the tracker cleared rather
// than showing balances from the previous account.
func (r *Reconciler) AccountChanged(account common.Address) {
	r.tracker.SetAccount(account)

	if _, err := r.tracker.Refresh(r.ctx, account); err != nil {
		r.lggr.Errorw("failed to resynchronize balances after account change",
			"account", account.Hex(), "err", err)
	}
}

// Disconnected clears all derived state.
func (r *Reconciler) Disconnected() {
	r.tracker.Clear()
}

// NetworkChanged performs a full reinitialization: derived state is dropped,
// the connect sequence is re-run, and the snapshot is rebuilt for whatever
// account the new session lands on. Nothing survives the boundary.
func (r *Reconciler) NetworkChanged() {
	r.tracker.Clear()

	session, err := r.sessions.Connect(r.ctx)
	if err != nil {
		r.lggr.Errorw("failed to reconnect after network change", "err", err)

		return
	}

	r.tracker.SetAccount(session.Account)
	if _, err := r.tracker.Refresh(r.ctx, session.Account); err != nil {
		r.lggr.Errorw("failed to refresh balances after network change",
			"account", session.Account.Hex(), "err", err)
	}
}
