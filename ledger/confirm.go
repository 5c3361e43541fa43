package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractCaller is the subset of the client needed to replay a reverted
// transaction as a call. Copied from the go-ethereum method signature to
// limit the scope of dependencies provided to the reason extraction.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// receiptFetcher is the subset of the client needed to poll for a receipt.
type receiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Confirm blocks until tx is mined or ctx is done. No local timeout is
// imposed; the wait is bounded only by the caller's context. On a reverted
// transaction it replays the call to extract a revert reason and returns a
// RevertError. Returns the block number the transaction was included in.
func (c *Client) Confirm(ctx context.Context, tx *types.Transaction, from common.Address) (uint64, error) {
	if tx == nil {
		return 0, errors.New("tx was nil, nothing to confirm")
	}

	receipt, err := waitMined(ctx, c.tickInterval, c, tx.Hash())
	if err != nil {
		return 0, fmt.Errorf("tx %s failed to confirm: %w", tx.Hash().Hex(), err)
	}
	if receipt == nil {
		return 0, fmt.Errorf("receipt was nil for tx %s", tx.Hash().Hex())
	}

	blockNum := receipt.BlockNumber.Uint64()

	if receipt.Status == types.ReceiptStatusFailed {
		reason, rerr := revertReason(ctx, c, from, tx, receipt)
		if rerr != nil {
			c.lggr.Debugw("could not decode revert reason", "tx", tx.Hash().Hex(), "err", rerr)
		}

		return blockNum, &RevertError{TxHash: tx.Hash().Hex(), Reason: reason}
	}

	return blockNum, nil
}

// waitMined polls for the transaction receipt at the given interval until it
// is available or ctx is done.
func waitMined(ctx context.Context, tick time.Duration, client receiptFetcher, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// revertReason retrieves the revert reason from a mined-but-failed
// transaction by replaying it as a call at the block it was included in.
func revertReason(
	ctx context.Context,
	caller ContractCaller,
	from common.Address,
	tx *types.Transaction,
	receipt *types.Receipt,
) (string, error) {
	call := ethereum.CallMsg{
		From:     from,
		To:       tx.To(),
		Data:     tx.Data(),
		Value:    tx.Value(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
	}

	if _, err := caller.CallContract(ctx, call, receipt.BlockNumber); err != nil {
		reason, perr := jsonErrorData(err)
		if perr == nil {
			return reason, nil
		}
		if reason == "" {
			return err.Error(), nil
		}
	}

	return "", fmt.Errorf("tx %s replayed without error", tx.Hash().Hex())
}

// jsonErrorData extracts the error data from an RPC JSON error.
func jsonErrorData(err error) (string, error) {
	if err == nil {
		return "", errors.New("cannot parse nil error")
	}

	// The JSON error type is private in go-ethereum, so probe for its shape.
	type jsonError interface {
		Error() string
		ErrorCode() int
		ErrorData() any
	}

	var jerr jsonError
	if !errors.As(err, &jerr) {
		return "", fmt.Errorf("error must be of type jsonError: %w", err)
	}

	return fmt.Sprintf("%s", jerr.ErrorData()), nil
}
