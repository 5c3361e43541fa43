package wallet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoProvider indicates no wallet provider is available. Terminal:
	// there is no path forward without the user installing or enabling one.
	ErrNoProvider = errors.New("no wallet provider available")

	// ErrUserRejected indicates the user declined the authorization or
	// signature request. Recoverable; the user may retry the same action.
	ErrUserRejected = errors.New("user rejected the request")
)

// userRejectedCode is the EIP-1193 provider error code for a rejected
// request.
const userRejectedCode = 4001

// ProviderError carries an error reported by the wallet provider verbatim.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("provider error: %s", e.Message)
}

// IsUserRejected reports whether err represents the user declining a request,
// either as the ErrUserRejected sentinel, a ProviderError with the standard
// rejection code, or a provider message that spells it out.
func IsUserRejected(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserRejected) {
		return true
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr.Code == userRejectedCode {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied")
}
