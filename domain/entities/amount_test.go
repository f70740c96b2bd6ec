package entities

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToWei(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{name: "whole", amount: 2, want: "2000000000000000000"},
		{name: "zero", amount: 0, want: "0"},
		{name: "fraction", amount: 0.5, want: "500000000000000000"},
		{name: "third of four", amount: 4.0 / 3.0, want: "1333333330000000000"},
		{name: "sub precision dropped", amount: 0.000000001, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToWei(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := ToWei(-1)
	assert.Error(t, err)
}

func TestFromWei(t *testing.T) {
	t.Parallel()

	wei, ok := new(big.Int).SetString("2500000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, 2.5, FromWei(wei))
	assert.Zero(t, FromWei(nil))
}
