package services

import (
	"testing"

	"ronlotto/domain/entities"
	"ronlotto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberGenerator_Draw(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []int
		want   string
	}{
		{
			name:   "always first remaining",
			values: []int{0, 0, 0, 0, 0, 0},
			want:   "00-01-02-03-04-05",
		},
		{
			name:   "always last remaining",
			values: []int{39, 38, 37, 36, 35, 34},
			want:   "00-01-02-03-04-39",
		},
		{
			name:   "output is sorted",
			values: []int{20, 3, 30, 0, 10, 1},
			want:   "03-04-06-14-20-32",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			generator := NewNumberGenerator(testhelpers.NewSequenceSource(tt.values...))
			drawn := generator.Draw()

			require.NoError(t, drawn.Validate())
			assert.Equal(t, tt.want, drawn.String())
		})
	}
}

func TestNumberGenerator_CryptoSource(t *testing.T) {
	t.Parallel()

	generator := NewNumberGenerator(nil)
	seen := make(map[int]bool)

	for i := 0; i < 500; i++ {
		drawn := generator.Draw()
		require.NoError(t, drawn.Validate())
		assert.Equal(t, drawn.Sorted(), drawn)
		for _, n := range drawn {
			seen[n] = true
		}
	}

	// 3000 samples over 40 values leave nothing uncovered in practice
	assert.Len(t, seen, entities.MaxNumber-entities.MinNumber+1)
}
