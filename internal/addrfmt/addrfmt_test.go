package addrfmt_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/dappsuite/wallet-orchestrator/internal/addrfmt"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		want    string
	}{
		{
			name:    "full address",
			address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
			want:    "0xC02a...6Cc2",
		},
		{
			name:    "exactly ten characters",
			address: "0x12345678",
			want:    "0x1234...5678",
		},
		{
			name:    "shorter than ten characters returned unchanged",
			address: "0x1234",
			want:    "0x1234",
		},
		{
			name:    "empty string",
			address: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, addrfmt.Truncate(tt.address))
		})
	}
}

func TestTruncateAddress(t *testing.T) {
	t.Parallel()

	addr := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	assert.Equal(t, "0xC02a...6Cc2", addrfmt.TruncateAddress(addr))
}
