package market

// ForecastSMA projects the next `horizon` modal prices from a history
// ordered oldest to newest, using a trailing simple moving average of
// `window` points. Each projected value feeds the next step's window.
func ForecastSMA(history []float64, window, horizon int) []float64 {
	if len(history) == 0 || horizon <= 0 {
		return nil
	}
	if window <= 0 {
		window = 7
	}
	if window > len(history) {
		window = len(history)
	}

	series := make([]float64, len(history), len(history)+horizon)
	copy(series, history)

	out := make([]float64, 0, horizon)
	for i := 0; i < horizon; i++ {
		sum := 0.0
		for _, v := range series[len(series)-window:] {
			sum += v
		}
		next := sum / float64(window)
		out = append(out, next)
		series = append(series, next)
	}
	return out
}
