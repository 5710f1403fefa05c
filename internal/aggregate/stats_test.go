package aggregate_test

import (
	"testing"

	"github.com/deppfellow/storefront-analytics/internal/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
		ok   bool
	}{
		{name: "empty", xs: nil, ok: false},
		{name: "single value", xs: []float64{42}, ok: false},
		{name: "two values", xs: []float64{1, 3}, want: 1.4142135623730951, ok: true},
		{name: "textbook sample", xs: []float64{2, 4, 4, 4, 5, 5, 7, 9}, want: 2.138089935299395, ok: true},
		{name: "constant", xs: []float64{5, 5, 5}, want: 0, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := aggregate.SampleStdDev(tt.xs)

			require.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMean(t *testing.T) {
	_, ok := aggregate.Mean(nil)
	assert.False(t, ok)

	m, ok := aggregate.Mean([]float64{1, 2, 3, 10})
	require.True(t, ok)
	assert.InDelta(t, 4.0, m, 1e-9)
}
