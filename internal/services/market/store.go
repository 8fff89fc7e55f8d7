package market

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/agri-ai/portal/internal/model"
)

const priceMeasurement = "mandi_price"

// Store persists mandi price points and reads back modal-price series.
type Store struct {
	write  api.WriteAPIBlocking
	query  api.QueryAPI
	bucket string
}

func NewStore(client influxdb2.Client, org, bucket string) *Store {
	return &Store{
		write:  client.WriteAPIBlocking(org, bucket),
		query:  client.QueryAPI(org),
		bucket: bucket,
	}
}

// WritePrices stores one point per record, timestamped at the arrival
// date so re-polls of the same day overwrite instead of duplicating.
func (s *Store) WritePrices(ctx context.Context, points []model.PricePoint) error {
	for _, p := range points {
		pt := influxdb2.NewPoint(priceMeasurement,
			map[string]string{
				"commodity": p.Commodity,
				"variety":   p.Variety,
				"market":    p.Market,
				"district":  p.District,
				"state":     p.State,
			},
			map[string]interface{}{
				"min_price":   p.MinPrice,
				"max_price":   p.MaxPrice,
				"modal_price": p.ModalPrice,
			},
			p.ArrivalDate,
		)
		if err := s.write.WritePoint(ctx, pt); err != nil {
			return fmt.Errorf("write price point: %w", err)
		}
	}
	return nil
}

// ModalPriceSeries returns the daily modal prices for a commodity at a
// market over the trailing window, oldest first.
func (s *Store) ModalPriceSeries(ctx context.Context, commodity, market string, days int) ([]float64, error) {
	if days <= 0 {
		days = 30
	}
	flux := fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dd)
  |> filter(fn: (r) => r._measurement == %q)
  |> filter(fn: (r) => r._field == "modal_price")
  |> filter(fn: (r) => r.commodity == %q and r.market == %q)
  |> aggregateWindow(every: 1d, fn: mean, createEmpty: false)
  |> sort(columns: ["_time"])
`, s.bucket, days, priceMeasurement, commodity, market)

	res, err := s.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query modal series: %w", err)
	}
	defer res.Close()

	var series []float64
	for res.Next() {
		if v, ok := res.Record().Value().(float64); ok {
			series = append(series, v)
		}
	}
	if res.Err() != nil {
		return nil, res.Err()
	}
	return series, nil
}

// LatestPrices returns the most recent stored record per market for a
// commodity, within the trailing lookback.
func (s *Store) LatestPrices(ctx context.Context, commodity string, lookback time.Duration) ([]model.PricePoint, error) {
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	flux := fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%ds)
  |> filter(fn: (r) => r._measurement == %q)
  |> filter(fn: (r) => r.commodity == %q)
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> group(columns: ["market"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n: 1)
`, s.bucket, int(lookback.Seconds()), priceMeasurement, commodity)

	res, err := s.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query latest prices: %w", err)
	}
	defer res.Close()

	var out []model.PricePoint
	for res.Next() {
		rec := res.Record()
		p := model.PricePoint{
			Commodity:   commodity,
			ArrivalDate: rec.Time(),
		}
		vals := rec.Values()
		if v, ok := vals["market"].(string); ok {
			p.Market = v
		}
		if v, ok := vals["district"].(string); ok {
			p.District = v
		}
		if v, ok := vals["state"].(string); ok {
			p.State = v
		}
		if v, ok := vals["variety"].(string); ok {
			p.Variety = v
		}
		if v, ok := vals["min_price"].(float64); ok {
			p.MinPrice = v
		}
		if v, ok := vals["max_price"].(float64); ok {
			p.MaxPrice = v
		}
		if v, ok := vals["modal_price"].(float64); ok {
			p.ModalPrice = v
		}
		out = append(out, p)
	}
	if res.Err() != nil {
		return nil, res.Err()
	}
	return out, nil
}
