package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastSMAConstantSeries(t *testing.T) {
	hist := []float64{100, 100, 100, 100, 100}
	out := ForecastSMA(hist, 3, 4)
	require.Len(t, out, 4)
	for _, v := range out {
		assert.Equal(t, 100.0, v)
	}
}

func TestForecastSMARollsWindow(t *testing.T) {
	hist := []float64{10, 20, 30}
	out := ForecastSMA(hist, 2, 2)
	require.Len(t, out, 2)
	assert.InDelta(t, 25.0, out[0], 1e-9) // (20+30)/2
	assert.InDelta(t, 27.5, out[1], 1e-9) // (30+25)/2
}

func TestForecastSMAWindowClamped(t *testing.T) {
	hist := []float64{40, 60}
	out := ForecastSMA(hist, 10, 1)
	require.Len(t, out, 1)
	assert.InDelta(t, 50.0, out[0], 1e-9)
}

func TestForecastSMAEmptyInputs(t *testing.T) {
	assert.Nil(t, ForecastSMA(nil, 3, 5))
	assert.Nil(t, ForecastSMA([]float64{1, 2}, 3, 0))
}
