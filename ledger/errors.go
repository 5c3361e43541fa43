package ledger

import (
	"errors"
	"fmt"
)

// QueryError wraps a failed read against the ledger. Callers use it to
// degrade balance display rather than crash.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("ledger query %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// RevertError is returned by Confirm when a transaction was mined but
// reverted. Reason carries the decoded revert reason when one could be
// extracted, otherwise the raw diagnostic text.
type RevertError struct {
	TxHash string
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("tx %s reverted with no reason", e.TxHash)
	}

	return fmt.Sprintf("tx %s reverted: %s", e.TxHash, e.Reason)
}

// IsQueryError reports whether err is or wraps a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError

	return errors.As(err, &qe)
}
