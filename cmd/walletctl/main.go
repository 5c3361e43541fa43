// walletctl is a headless client for the wallet orchestration framework. It
// connects a keyed wallet session to an EVM node and exposes the core
// operations as subcommands:
//
//	walletctl balances
//	walletctl wrap <amount>
//	walletctl unwrap <amount>
//	walletctl swap <amount> <target-token-address> <min-out-base-units>
//
// Configuration is read from walletctl.yaml (or WALLET_* env vars); the
// signing key must come from WALLET_PRIVATE_KEY.
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dappsuite/wallet-orchestrator/config"
	"github.com/dappsuite/wallet-orchestrator/internal/addrfmt"
	"github.com/dappsuite/wallet-orchestrator/ledger"
	"github.com/dappsuite/wallet-orchestrator/notify"
	"github.com/dappsuite/wallet-orchestrator/orchestrator"
	"github.com/dappsuite/wallet-orchestrator/pkg/logger"
	"github.com/dappsuite/wallet-orchestrator/portfolio"
	"github.com/dappsuite/wallet-orchestrator/reconcile"
	"github.com/dappsuite/wallet-orchestrator/wallet"
)

const defaultConfigFile = "walletctl.yaml"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	lggr, err := logger.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = lggr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, lggr, os.Args[1], os.Args[2:]); err != nil {
		lggr.Fatalf("walletctl: %v", err)
	}
}

func run(ctx context.Context, lggr logger.Logger, command string, args []string) error {
	cfg, err := config.Load(defaultConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("WALLET_PRIVATE_KEY is required")
	}

	provider, err := wallet.NewKeyedProvider(cfg.PrivateKey, big.NewInt(cfg.ChainID))
	if err != nil {
		return fmt.Errorf("failed to create keyed provider: %w", err)
	}

	client, err := ledger.NewClient(lggr, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to create ledger client: %w", err)
	}
	defer client.Close()

	weth := ledger.NewWETH(cfg.WrappedNativeAddress(), client)
	token := ledger.NewERC20(cfg.TokenAddress(), client)
	router := ledger.NewRouter(cfg.RouterAddress(), client)

	sink := notify.NewLoggerSink(lggr)
	sessions := wallet.NewService(lggr, provider, sink)
	tracker := portfolio.NewTracker(lggr, client, weth, token)
	sessions.SetHandler(reconcile.New(ctx, lggr, sessions, tracker))

	session, err := sessions.Connect(ctx)
	if err != nil {
		return err
	}
	tracker.SetAccount(session.Account)

	orch := orchestrator.New(lggr, sessions, client, weth, router, tracker, sink)

	switch command {
	case "balances":
		return printBalances(ctx, session.Account, tracker)
	case "wrap":
		if len(args) != 1 {
			return fmt.Errorf("usage: walletctl wrap <amount>")
		}
		_, err = orch.Wrap(ctx, args[0])

		return err
	case "unwrap":
		if len(args) != 1 {
			return fmt.Errorf("usage: walletctl unwrap <amount>")
		}
		_, err = orch.Unwrap(ctx, args[0])

		return err
	case "swap":
		if len(args) != 3 {
			return fmt.Errorf("usage: walletctl swap <amount> <target-token-address> <min-out-base-units>")
		}
		if !common.IsHexAddress(args[1]) {
			return fmt.Errorf("invalid target token address: %q", args[1])
		}
		minOut, ok := new(big.Int).SetString(args[2], 10)
		if !ok {
			return fmt.Errorf("invalid minimum output amount: %q", args[2])
		}
		_, err = orch.Swap(ctx, args[0], common.HexToAddress(args[1]), minOut)

		return err
	default:
		usage()

		return fmt.Errorf("unknown command %q", command)
	}
}

func printBalances(ctx context.Context, account common.Address, tracker *portfolio.Tracker) error {
	snapshot, err := tracker.Refresh(ctx, account)
	if err != nil {
		return err
	}

	fmt.Printf("Account: %s\n", addrfmt.TruncateAddress(snapshot.Account))
	fmt.Printf("%s: %s\n", snapshot.Native.Asset.Symbol, snapshot.Native.Display)
	fmt.Printf("%s: %s\n", snapshot.Wrapped.Asset.Symbol, snapshot.Wrapped.Display)
	fmt.Printf("%s: %s\n", snapshot.Token.Asset.Symbol, snapshot.Token.Display)

	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: walletctl <command> [args]

commands:
  balances                                            print tracked balances
  wrap <amount>                                       wrap native asset
  unwrap <amount>                                     unwrap back to native
  swap <amount> <target-token-address> <min-out>      swap wrapped for token`)
}
