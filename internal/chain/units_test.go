package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{name: "whole amount", amount: "1", decimals: 18, want: "1000000000000000000"},
		{name: "fractional amount", amount: "1.5", decimals: 18, want: "1500000000000000000"},
		{name: "six decimals", amount: "2.25", decimals: 6, want: "2250000"},
		{name: "zero", amount: "0", decimals: 18, want: "0"},
		{name: "leading dot", amount: ".5", decimals: 18, want: "500000000000000000"},
		{name: "whitespace", amount: " 3 ", decimals: 0, want: "3"},
		{name: "too many decimals", amount: "1.1234567", decimals: 6, wantErr: true},
		{name: "negative", amount: "-1", decimals: 18, wantErr: true},
		{name: "empty", amount: "", decimals: 18, wantErr: true},
		{name: "garbage", amount: "abc", decimals: 18, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
	}{
		{name: "one token", amount: "1000000000000000000", decimals: 18, want: "1"},
		{name: "fractional", amount: "1500000000000000000", decimals: 18, want: "1.5"},
		{name: "small value", amount: "1", decimals: 18, want: "0.000000000000000001"},
		{name: "zero", amount: "0", decimals: 18, want: "0"},
		{name: "no decimals", amount: "42", decimals: 0, want: "42"},
		{name: "six decimals", amount: "2250000", decimals: 6, want: "2.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := new(big.Int).SetString(tt.amount, 10)
			require.True(t, ok)
			assert.Equal(t, tt.want, FormatUnits(amount, tt.decimals))
		})
	}
}

func TestFormatUnits_NilAmount(t *testing.T) {
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestParseFormatRoundTrip(t *testing.T) {
	amount, err := ParseUnits("123.456789", 18)
	require.NoError(t, err)
	assert.Equal(t, "123.456789", FormatUnits(amount, 18))
}
