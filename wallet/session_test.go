package wallet_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dappsuite/wallet-orchestrator/notify"
	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
	"github.com/dappsuite/wallet-orchestrator/wallet"
)

var (
	account1 = common.HexToAddress("0x1111111111111111111111111111111111111111")
	account2 = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

// fakeProvider implements wallet.Provider and lets tests fire the external
// change notifications a real provider would deliver.
type fakeProvider struct {
	mu             sync.Mutex
	accounts       []common.Address
	requestErr     error
	transactorErr  error
	subscribeErr   error
	subscribeCalls int
	events         wallet.Events
	transactorCtxs []context.Context
}

func (p *fakeProvider) RequestAccounts(_ context.Context) ([]common.Address, error) {
	if p.requestErr != nil {
		return nil, p.requestErr
	}

	return p.accounts, nil
}

func (p *fakeProvider) Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	p.mu.Lock()
	p.transactorCtxs = append(p.transactorCtxs, ctx)
	p.mu.Unlock()

	if p.transactorErr != nil {
		return nil, p.transactorErr
	}

	return &bind.TransactOpts{From: account}, nil
}

func (p *fakeProvider) Subscribe(events wallet.Events) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subscribeErr != nil {
		return p.subscribeErr
	}
	p.subscribeCalls++
	p.events = events

	return nil
}

// recordingHandler records session transitions in order.
type recordingHandler struct {
	mu          sync.Mutex
	accounts    []common.Address
	disconnects int
	networkChgs int
}

func (h *recordingHandler) AccountChanged(account common.Address) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.accounts = append(h.accounts, account)
}

func (h *recordingHandler) Disconnected() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnects++
}

func (h *recordingHandler) NetworkChanged() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.networkChgs++
}

func TestService_Connect(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{accounts: []common.Address{account1, account2}}
	sink := notify.NewRecorder()
	svc := wallet.NewService(logger.Test(t), provider, sink)

	session, err := svc.Connect(t.Context())
	require.NoError(t, err)

	assert.Equal(t, account1, session.Account)
	assert.True(t, session.Active())
	assert.Equal(t, account1, svc.CurrentAccount())
	assert.Equal(t, 1, provider.subscribeCalls)

	got := sink.All()
	require.Len(t, got, 1)
	assert.Equal(t, notify.SeveritySuccess, got[0].Severity)
}

func TestService_ConnectTwiceSubscribesOnce(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{accounts: []common.Address{account1}}
	svc := wallet.NewService(logger.Test(t), provider, notify.NewRecorder())

	_, err := svc.Connect(t.Context())
	require.NoError(t, err)
	_, err = svc.Connect(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.subscribeCalls)
}

func TestService_ConnectFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider wallet.Provider
		wantErr  error
	}{
		{
			name:     "no provider",
			provider: nil,
			wantErr:  wallet.ErrNoProvider,
		},
		{
			name:     "user rejected",
			provider: &fakeProvider{requestErr: &wallet.ProviderError{Code: 4001, Message: "User rejected the request."}},
			wantErr:  wallet.ErrUserRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := notify.NewRecorder()
			svc := wallet.NewService(logger.Test(t), tt.provider, sink)

			_, err := svc.Connect(t.Context())
			require.ErrorIs(t, err, tt.wantErr)

			got := sink.All()
			require.Len(t, got, 1)
			assert.Equal(t, notify.SeverityError, got[0].Severity)
			assert.Equal(t, common.Address{}, svc.CurrentAccount())
		})
	}
}

func TestService_ConnectNoAccounts(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := wallet.NewService(logger.Test(t), provider, notify.NewRecorder())

	_, err := svc.Connect(t.Context())

	var perr *wallet.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.False(t, svc.Current().Active())
}

func TestService_ConnectProviderError(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{requestErr: errors.New("rpc unreachable")}
	svc := wallet.NewService(logger.Test(t), provider, notify.NewRecorder())

	_, err := svc.Connect(t.Context())
	require.Error(t, err)
	assert.NotErrorIs(t, err, wallet.ErrUserRejected)
	assert.ErrorContains(t, err, "rpc unreachable")
}

func TestService_AccountsChangedEmptyDisconnects(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{accounts: []common.Address{account1}}
	handler := &recordingHandler{}
	sink := notify.NewRecorder()
	svc := wallet.NewService(logger.Test(t), provider, sink)
	svc.SetHandler(handler)

	_, err := svc.Connect(t.Context())
	require.NoError(t, err)

	provider.events.AccountsChanged(nil)

	assert.False(t, svc.Current().Active())
	assert.Equal(t, common.Address{}, svc.CurrentAccount())
	assert.Equal(t, 1, handler.disconnects)
}

func TestService_AccountsChangedAdoptsFirst(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{accounts: []common.Address{account1}}
	handler := &recordingHandler{}
	svc := wallet.NewService(logger.Test(t), provider, notify.NewRecorder())
	svc.SetHandler(handler)

	_, err := svc.Connect(t.Context())
	require.NoError(t, err)

	provider.events.AccountsChanged([]common.Address{account2, account1})

	session := svc.Current()
	assert.Equal(t, account2, session.Account)
	assert.True(t, session.Active())
	assert.Equal(t, []common.Address{account2}, handler.accounts)
}

func TestService_AccountsChangedUsesConnectContext(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{accounts: []common.Address{account1}}
	svc := wallet.NewService(logger.Test(t), provider, notify.NewRecorder())

	ctx, cancel := context.WithCancel(t.Context())
	_, err := svc.Connect(ctx)
	require.NoError(t, err)

	// The account-switch path issues provider calls outside any caller's
	// scope; cancelling the connection's context must bound them too.
	cancel()
	provider.events.AccountsChanged([]common.Address{account2})

	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Len(t, provider.transactorCtxs, 2)
	assert.ErrorIs(t, provider.transactorCtxs[1].Err(), context.Canceled)
}

func TestService_AccountsChangedSameAccountIsNoop(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{accounts: []common.Address{account1}}
	handler := &recordingHandler{}
	svc := wallet.NewService(logger.Test(t), provider, notify.NewRecorder())
	svc.SetHandler(handler)

	_, err := svc.Connect(t.Context())
	require.NoError(t, err)

	provider.events.AccountsChanged([]common.Address{account1})

	assert.Empty(t, handler.accounts)
	assert.Equal(t, account1, svc.CurrentAccount())
}

func TestService_ChainChangedTearsDownSession(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{accounts: []common.Address{account1}}
	handler := &recordingHandler{}
	svc := wallet.NewService(logger.Test(t), provider, notify.NewRecorder())
	svc.SetHandler(handler)

	_, err := svc.Connect(t.Context())
	require.NoError(t, err)

	provider.events.ChainChanged()

	assert.False(t, svc.Current().Active())
	assert.Equal(t, 1, handler.networkChgs)

	// Reconnecting after the teardown must not re-register for events.
	_, err = svc.Connect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, provider.subscribeCalls)
}

func TestSession_Active(t *testing.T) {
	t.Parallel()

	assert.False(t, wallet.Session{}.Active())
	assert.False(t, wallet.Session{Account: account1}.Active())
	assert.False(t, wallet.Session{Authority: &bind.TransactOpts{}}.Active())
	assert.True(t, wallet.Session{Account: account1, Authority: &bind.TransactOpts{From: account1}}.Active())
}
