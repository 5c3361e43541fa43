package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dappsuite/wallet-orchestrator/internal/addrfmt"
	"github.com/dappsuite/wallet-orchestrator/notify"
	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
)

// Session is the authoritative connection state: one connected account and
// the signing authority bound to it. Authority is present iff Account is
// non-empty. The zero value is the disconnected state.
type Session struct {
	Account   common.Address
	Authority *bind.TransactOpts
}

// Active reports whether the session is bound to a connected account.
func (s Session) Active() bool {
	return s.Authority != nil && s.Account != (common.Address{})
}

// Handler receives session transitions. Implemented by the event reconciler;
// callbacks run on the goroutine delivering the provider notification.
type Handler interface {
	// AccountChanged fires after the session adopted a new account. All
	// state derived from the previous account is invalid.
	AccountChanged(account common.Address)

	// Disconnected fires after the session was cleared.
	Disconnected()

	// NetworkChanged fires after the active network changed. The session
	// has already been torn down; the only correct response is a full
	// reinitialization.
	NetworkChanged()
}

// Service owns the Session. It connects through the wallet provider, answers
// reads, and reconciles the provider's external change notifications against
// the session.
type Service struct {
	lggr     logger.Logger
	provider Provider
	sink     notify.Sink

	mu         sync.Mutex
	session    Session
	subscribed bool
	handler    Handler
	ctx        context.Context
}

// NewService creates a Service over the given provider. A nil provider is
// permitted and surfaces as ErrNoProvider on Connect.
func NewService(lggr logger.Logger, provider Provider, sink notify.Sink) *Service {
	return &Service{
		lggr:     logger.Named(lggr, "wallet"),
		provider: provider,
		sink:     sink,
	}
}

// SetHandler registers the session transition handler. Must be called before
// Connect.
func (s *Service) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handler = h
}

// Connect establishes the session: requests account access, adopts the first
// returned account, obtains its signing authority, and registers for external
// change notifications exactly once per process. Safe to call again after a
// network change without re-registering.
func (s *Service) Connect(ctx context.Context) (Session, error) {
	if s.provider == nil {
		s.sink.Notify(notify.SeverityError, "Wallet provider not found. Please install or enable one.")

		return Session{}, ErrNoProvider
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		if IsUserRejected(err) {
			s.sink.Notify(notify.SeverityError, "Wallet connection was rejected.")

			return Session{}, fmt.Errorf("%w: %w", ErrUserRejected, err)
		}
		s.sink.Notify(notify.SeverityError, fmt.Sprintf("Failed to connect wallet: %v", err))

		return Session{}, fmt.Errorf("failed to request accounts: %w", err)
	}
	if len(accounts) == 0 {
		s.sink.Notify(notify.SeverityError, "Wallet returned no accounts.")

		return Session{}, &ProviderError{Message: "provider returned no accounts"}
	}

	account := accounts[0]

	authority, err := s.provider.Transactor(ctx, account)
	if err != nil {
		s.sink.Notify(notify.SeverityError, fmt.Sprintf("Failed to connect wallet: %v", err))

		return Session{}, fmt.Errorf("failed to obtain signing authority for %s: %w", account.Hex(), err)
	}

	s.mu.Lock()
	if !s.subscribed {
		if serr := s.provider.Subscribe(Events{
			AccountsChanged: s.onAccountsChanged,
			ChainChanged:    s.onChainChanged,
		}); serr != nil {
			s.mu.Unlock()
			s.sink.Notify(notify.SeverityError, fmt.Sprintf("Failed to connect wallet: %v", serr))

			return Session{}, fmt.Errorf("failed to subscribe to provider events: %w", serr)
		}
		s.subscribed = true
	}
	s.session = Session{Account: account, Authority: authority}
	// Provider callbacks fire outside any caller's scope; bound the ledger
	// calls they issue with the lifetime of the connection that armed them.
	s.ctx = ctx
	session := s.session
	s.mu.Unlock()

	s.lggr.Infow("wallet connected", "account", account.Hex())
	s.sink.Notify(notify.SeveritySuccess, "Wallet connected successfully!")

	return session, nil
}

// Current returns a copy of the session.
func (s *Service) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session
}

// CurrentAccount returns the connected account, or the zero address when
// disconnected.
func (s *Service) CurrentAccount() common.Address {
	return s.Current().Account
}

// Authority returns the signing authority for the connected account, or an
// error when the session is not active.
func (s *Service) Authority() (*bind.TransactOpts, error) {
	session := s.Current()
	if !session.Active() {
		return nil, errors.New("no active session")
	}

	return session.Authority, nil
}

// Disconnect clears the session.
func (s *Service) Disconnect() {
	s.mu.Lock()
	s.session = Session{}
	handler := s.handler
	s.mu.Unlock()

	s.lggr.Info("wallet disconnected")
	if handler != nil {
		handler.Disconnected()
	}
}

// onAccountsChanged reconciles the provider's account list against the
// session. An empty list is a disconnect; otherwise the first address is
// adopted wholesale and dependents resynchronize from scratch, since a
// changed account invalidates all cached balances.
func (s *Service) onAccountsChanged(accounts []common.Address) {
	if len(accounts) == 0 {
		s.sink.Notify(notify.SeverityInfo, "Wallet disconnected.")
		s.Disconnect()

		return
	}

	account := accounts[0]
	if account == s.CurrentAccount() {
		return
	}

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	authority, err := s.provider.Transactor(ctx, account)
	if err != nil {
		s.lggr.Errorw("failed to obtain signing authority after account change",
			"account", account.Hex(), "err", err)
		s.sink.Notify(notify.SeverityError, fmt.Sprintf("Failed to switch account: %v", err))
		s.Disconnect()

		return
	}

	s.mu.Lock()
	s.session = Session{Account: account, Authority: authority}
	handler := s.handler
	s.mu.Unlock()

	s.lggr.Infow("account changed", "account", account.Hex())
	s.sink.Notify(notify.SeverityInfo, "Switched to account "+addrfmt.TruncateAddress(account)+".")

	if handler != nil {
		handler.AccountChanged(account)
	}
}

// onChainChanged tears the session down. A network change invalidates the
// meaning of every contract address and cached token metadata, so it is fatal
// to the current session; the handler drives a complete reinitialization with
// no state carried across the boundary.
func (s *Service) onChainChanged() {
	s.mu.Lock()
	s.session = Session{}
	handler := s.handler
	s.mu.Unlock()

	s.lggr.Info("network changed, session torn down")
	s.sink.Notify(notify.SeverityInfo, "Network changed. Reconnecting...")

	if handler != nil {
		handler.NetworkChanged()
	}
}
