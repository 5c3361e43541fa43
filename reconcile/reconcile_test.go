package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
	"github.com/dappsuite/wallet-orchestrator/portfolio"
	"github.com/dappsuite/wallet-orchestrator/reconcile"
	"github.com/dappsuite/wallet-orchestrator/wallet"
)

var (
	account1 = common.HexToAddress("0x1111111111111111111111111111111111111111")
	account2 = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

type fakeConnector struct {
	session wallet.Session
	err     error
	calls   int
}

func (f *fakeConnector) Connect(_ context.Context) (wallet.Session, error) {
	f.calls++
	if f.err != nil {
		return wallet.Session{}, f.err
	}

	return f.session, nil
}

type fakeTracker struct {
	setAccounts []common.Address
	refreshed   []common.Address
	clears      int
	refreshErr  error
}

func (f *fakeTracker) SetAccount(account common.Address) {
	f.setAccounts = append(f.setAccounts, account)
}

func (f *fakeTracker) Clear() {
	f.clears++
}

func (f *fakeTracker) Refresh(_ context.Context, account common.Address) (portfolio.Snapshot, error) {
	f.refreshed = append(f.refreshed, account)
	if f.refreshErr != nil {
		return portfolio.Snapshot{}, f.refreshErr
	}

	return portfolio.Snapshot{Account: account}, nil
}

func TestReconciler_AccountChanged(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{}
	r := reconcile.New(t.Context(), logger.Test(t), &fakeConnector{}, tracker)

	r.AccountChanged(account2)

	assert.Equal(t, []common.Address{account2}, tracker.setAccounts)
	assert.Equal(t, []common.Address{account2}, tracker.refreshed)
}

func TestReconciler_Disconnected(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{}
	r := reconcile.New(t.Context(), logger.Test(t), &fakeConnector{}, tracker)

	r.Disconnected()

	assert.Equal(t, 1, tracker.clears)
	assert.Empty(t, tracker.refreshed)
}

func TestReconciler_NetworkChangedReinitializes(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{session: wallet.Session{Account: account1}}
	tracker := &fakeTracker{}
	r := reconcile.New(t.Context(), logger.Test(t), connector, tracker)

	r.NetworkChanged()

	// Full reinitialization: derived state dropped first, then reconnect,
	// then a fresh snapshot for the new session's account.
	assert.Equal(t, 1, tracker.clears)
	require.Equal(t, 1, connector.calls)
	assert.Equal(t, []common.Address{account1}, tracker.setAccounts)
	assert.Equal(t, []common.Address{account1}, tracker.refreshed)
}

func TestReconciler_NetworkChangedConnectFailure(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{err: errors.New("provider unavailable")}
	tracker := &fakeTracker{}
	r := reconcile.New(t.Context(), logger.Test(t), connector, tracker)

	r.NetworkChanged()

	assert.Equal(t, 1, tracker.clears)
	assert.Empty(t, tracker.refreshed)
}
