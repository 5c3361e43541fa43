// Package addrfmt formats account addresses for display.
package addrfmt

import "github.com/ethereum/go-ethereum/common"

// Truncate shortens a raw address string to its first 6 and last 4
// characters, joined by an ellipsis. Addresses shorter than 10 characters are
// returned unchanged; callers are expected to pass well formed addresses.
func Truncate(address string) string {
	if len(address) < 10 {
		return address
	}

	return address[:6] + "..." + address[len(address)-4:]
}

// TruncateAddress formats a common.Address using its checksummed hex form.
func TruncateAddress(addr common.Address) string {
	return Truncate(addr.Hex())
}
