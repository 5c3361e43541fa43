package units_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dappsuite/wallet-orchestrator/internal/units"
)

func TestToBaseUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		display  string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{
			name:     "whole amount",
			display:  "2",
			decimals: 18,
			want:     "2000000000000000000",
		},
		{
			name:     "fractional amount",
			display:  "1.5",
			decimals: 18,
			want:     "1500000000000000000",
		},
		{
			name:     "fraction only",
			display:  ".5",
			decimals: 18,
			want:     "500000000000000000",
		},
		{
			name:     "zero",
			display:  "0",
			decimals: 18,
			want:     "0",
		},
		{
			name:     "full precision",
			display:  "0.000000000000000001",
			decimals: 18,
			want:     "1",
		},
		{
			name:     "low decimals",
			display:  "12.34",
			decimals: 6,
			want:     "12340000",
		},
		{
			name:     "surrounding whitespace",
			display:  " 1.5 ",
			decimals: 18,
			want:     "1500000000000000000",
		},
		{
			name:     "empty string",
			display:  "",
			decimals: 18,
			wantErr:  true,
		},
		{
			name:     "negative amount",
			display:  "-1",
			decimals: 18,
			wantErr:  true,
		},
		{
			name:     "non numeric",
			display:  "abc",
			decimals: 18,
			wantErr:  true,
		},
		{
			name:     "two decimal points",
			display:  "1.2.3",
			decimals: 18,
			wantErr:  true,
		},
		{
			name:     "bare decimal point",
			display:  ".",
			decimals: 18,
			wantErr:  true,
		},
		{
			name:     "too many fractional digits",
			display:  "0.1234567",
			decimals: 6,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := units.ToBaseUnits(tt.display, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, units.ErrMalformedAmount)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		decimals uint8
		want     string
	}{
		{
			name:     "whole amount",
			raw:      "2000000000000000000",
			decimals: 18,
			want:     "2",
		},
		{
			name:     "fractional amount trims trailing zeros",
			raw:      "1500000000000000000",
			decimals: 18,
			want:     "1.5",
		},
		{
			name:     "smallest unit",
			raw:      "1",
			decimals: 18,
			want:     "0.000000000000000001",
		},
		{
			name:     "zero",
			raw:      "0",
			decimals: 18,
			want:     "0",
		},
		{
			name:     "zero decimals",
			raw:      "42",
			decimals: 0,
			want:     "42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, ok := new(big.Int).SetString(tt.raw, 10)
			require.True(t, ok)

			assert.Equal(t, tt.want, units.ToDisplay(raw, tt.decimals))
		})
	}
}

func TestToDisplayNil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", units.ToDisplay(nil, 18))
}

// Round-trip law: converting a display amount to base units and back yields
// the same number, modulo canonical formatting.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		display  string
		decimals uint8
		want     string
	}{
		{display: "1.5", decimals: 18, want: "1.5"},
		{display: "0.25", decimals: 8, want: "0.25"},
		{display: "100", decimals: 6, want: "100"},
		{display: "1.500", decimals: 18, want: "1.5"},
		{display: "0.000000000000000001", decimals: 18, want: "0.000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			t.Parallel()

			raw, err := units.ToBaseUnits(tt.display, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, units.ToDisplay(raw, tt.decimals))
		})
	}
}
