package market

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/model"
)

type fakeReader struct {
	series []float64
	latest []model.PricePoint
	err    error
}

func (f *fakeReader) ModalPriceSeries(_ context.Context, _, _ string, _ int) ([]float64, error) {
	return f.series, f.err
}
func (f *fakeReader) LatestPrices(_ context.Context, _ string, _ time.Duration) ([]model.PricePoint, error) {
	return f.latest, f.err
}

func TestHandleForecastReturnsHistoryAndForecast(t *testing.T) {
	api := NewAPI(&fakeReader{series: []float64{100, 110, 120}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/prices/forecast?commodity=Banana&market=Aluva&window=3&horizon=2", nil)
	rec := httptest.NewRecorder()
	api.HandleForecast(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		History  []float64 `json:"history"`
		Forecast []float64 `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.History, 3)
	require.Len(t, body.Forecast, 2)
	assert.InDelta(t, 110.0, body.Forecast[0], 1e-9)
}

func TestHandleForecastNoHistory(t *testing.T) {
	api := NewAPI(&fakeReader{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/prices/forecast?commodity=Banana&market=Aluva", nil)
	rec := httptest.NewRecorder()
	api.HandleForecast(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleForecastValidation(t *testing.T) {
	api := NewAPI(&fakeReader{series: []float64{1}}, zap.NewNop())

	for _, target := range []string{
		"/prices/forecast?market=Aluva",
		"/prices/forecast?commodity=Banana",
		"/prices/forecast?commodity=Banana&market=Aluva&horizon=99",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		api.HandleForecast(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHandleLatest(t *testing.T) {
	api := NewAPI(&fakeReader{latest: []model.PricePoint{{Commodity: "Banana", Market: "Aluva", ModalPrice: 5200}}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/prices/latest?commodity=Banana", nil)
	rec := httptest.NewRecorder()
	api.HandleLatest(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Aluva")
}

func TestHandleLatestStoreError(t *testing.T) {
	api := NewAPI(&fakeReader{err: errors.New("influx down")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/prices/latest?commodity=Banana", nil)
	rec := httptest.NewRecorder()
	api.HandleLatest(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
