package orchestrator

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/core"

	"github.com/dappsuite/wallet-orchestrator/ledger"
	"github.com/dappsuite/wallet-orchestrator/wallet"
)

// OutcomeKind is the closed classification of a submitted transaction's
// result. Every failure maps to exactly one kind; nothing leaves the
// orchestration layer unclassified.
type OutcomeKind string

const (
	// OutcomeSuccess: the transaction was mined and executed.
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeRejectedByUser: the user explicitly declined the signature
	// request. Recoverable; the user may retry the same action.
	OutcomeRejectedByUser OutcomeKind = "rejected-by-user"

	// OutcomeInsufficientFunds: the signer's balance cannot cover the value
	// plus the network fee.
	OutcomeInsufficientFunds OutcomeKind = "insufficient-funds"

	// OutcomeExecutionFailure: any other failure, including a ledger-side
	// revert. Detail carries the raw diagnostic text.
	OutcomeExecutionFailure OutcomeKind = "execution-failure"
)

// Outcome is the reported result of one submitted transaction. Produced once,
// consumed by the notification sink, not retained.
type Outcome struct {
	Kind   OutcomeKind
	Detail string
}

// classifyFailure maps a submission or confirmation error to an Outcome. It
// is the single classification point for provider and ledger failures; an
// unrecognized error still maps to execution-failure with its raw message
// preserved.
func classifyFailure(err error) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeSuccess}
	}

	if wallet.IsUserRejected(err) {
		return Outcome{Kind: OutcomeRejectedByUser, Detail: err.Error()}
	}

	if isInsufficientFunds(err) {
		return Outcome{Kind: OutcomeInsufficientFunds, Detail: err.Error()}
	}

	var rerr *ledger.RevertError
	if errors.As(err, &rerr) {
		return Outcome{Kind: OutcomeExecutionFailure, Detail: rerr.Error()}
	}

	return Outcome{Kind: OutcomeExecutionFailure, Detail: err.Error()}
}

func isInsufficientFunds(err error) bool {
	if errors.Is(err, core.ErrInsufficientFunds) {
		return true
	}

	// Remote nodes report the condition as text only.
	return strings.Contains(strings.ToLower(err.Error()), "insufficient funds")
}
