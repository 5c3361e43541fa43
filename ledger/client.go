// Package ledger wraps read and write access to the remote EVM ledger: node
// connectivity with retries, transaction confirmation, and thin typed
// wrappers over the contracts the framework interacts with.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
)

const (
	// Default retry configuration for RPC calls
	RPCDefaultRetryAttempts = 3
	RPCDefaultRetryDelay    = 500 * time.Millisecond
	RPCDefaultRetryTimeout  = 10 * time.Second

	// Default timeout for dialing and health checking the RPC endpoint
	RPCDefaultDialTimeout        = 10 * time.Second
	RPCDefaultHealthCheckTimeout = 2 * time.Second

	// Default polling interval while waiting for a transaction to be mined
	DefaultConfirmTickInterval = 1 * time.Second
)

// OnchainClient is the surface the framework needs from an EVM node. The geth
// bind backends cover contract reads, writes, and receipt lookups; BalanceAt
// is added for native asset balances.
type OnchainClient interface {
	bind.ContractBackend
	bind.DeployBackend

	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// RetryConfig controls retries of individual RPC calls.
type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: RPCDefaultRetryAttempts,
		Delay:    RPCDefaultRetryDelay,
		Timeout:  RPCDefaultRetryTimeout,
	}
}

// Client should comply with the OnchainClient interface
var _ OnchainClient = &Client{}

// Client is an OnchainClient backed by a single RPC endpoint. Reads and
// transaction submission are retried per RetryConfig; every retried call gets
// a fresh timeout so one stalled request cannot wedge the caller.
type Client struct {
	*ethclient.Client

	RetryConfig  RetryConfig
	tickInterval time.Duration
	lggr         logger.Logger
}

// WithRetryConfig overrides the default retry configuration.
func WithRetryConfig(cfg RetryConfig) func(*Client) {
	return func(c *Client) {
		c.RetryConfig = cfg
	}
}

// WithConfirmTickInterval overrides the receipt polling interval used by
// Confirm.
func WithConfirmTickInterval(interval time.Duration) func(*Client) {
	return func(c *Client) {
		c.tickInterval = interval
	}
}

// NewClient dials the RPC endpoint and verifies it is healthy before
// returning.
func NewClient(lggr logger.Logger, rpcURL string, opts ...func(*Client)) (*Client, error) {
	if rpcURL == "" {
		return nil, errors.New("rpc url is required")
	}

	c := &Client{
		RetryConfig:  defaultRetryConfig(),
		tickInterval: DefaultConfirmTickInterval,
		lggr:         logger.Named(lggr, "ledger"),
	}
	for _, opt := range opts {
		opt(c)
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), RPCDefaultDialTimeout)
	defer cancel()

	ethc, err := ethclient.DialContext(dialCtx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}

	if err := healthCheck(ethc); err != nil {
		ethc.Close()

		return nil, err
	}

	c.Client = ethc

	return c, nil
}

// healthCheck performs a basic health check on the RPC client by calling
// eth_blockNumber.
func healthCheck(client *ethclient.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), RPCDefaultHealthCheckTimeout)
	defer cancel()

	if _, err := client.BlockNumber(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	var result *big.Int
	err := c.retry(ctx, "BalanceAt", func(ct context.Context) error {
		var err error
		result, err = c.Client.BalanceAt(ct, account, blockNumber)

		return err
	})
	if err != nil {
		return nil, &QueryError{Op: "BalanceAt", Err: err}
	}

	return result, nil
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var result []byte
	err := c.retry(ctx, "CallContract", func(ct context.Context) error {
		var err error
		result, err = c.Client.CallContract(ct, msg, blockNumber)

		return err
	})
	if err != nil {
		return nil, &QueryError{Op: "CallContract", Err: err}
	}

	return result, nil
}

// SendTransaction submits a signed transaction. Resubmitting the same signed
// transaction is idempotent (same hash), so retrying is safe.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.retry(ctx, "SendTransaction", func(ct context.Context) error {
		return c.Client.SendTransaction(ct, tx)
	})
}

func (c *Client) retry(ctx context.Context, name string, fn func(context.Context) error) error {
	return retry.Do(func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.RetryConfig.Timeout)
		defer cancel()

		return fn(callCtx)
	},
		retry.Context(ctx),
		retry.Attempts(c.RetryConfig.Attempts),
		retry.Delay(c.RetryConfig.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.lggr.Warnf("retrying %s after attempt %d: %v", name, n+1, err)
		}),
	)
}
