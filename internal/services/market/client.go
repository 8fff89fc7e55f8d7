// Package market polls the data.gov.in daily mandi price resource and
// serves modal-price history and short-range forecasts.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/agri-ai/portal/internal/model"
)

const defaultResourceURL = "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070"

// data.gov.in serves prices as strings, arrival_date as DD/MM/YYYY.
type govRecord struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety"`
	ArrivalDate string `json:"arrival_date"`
	MinPrice    string `json:"min_price"`
	MaxPrice    string `json:"max_price"`
	ModalPrice  string `json:"modal_price"`
}

type govResp struct {
	Total   int         `json:"total"`
	Count   int         `json:"count"`
	Records []govRecord `json:"records"`
}

type Client struct {
	apiKey      string
	resourceURL string
	hc          *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, resourceURL: defaultResourceURL, hc: &http.Client{Timeout: 15 * time.Second}}
}

func (c *Client) SetResourceURL(u string) { c.resourceURL = u }

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseArrival(s string) time.Time {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r govRecord) toPoint() model.PricePoint {
	return model.PricePoint{
		Commodity:   r.Commodity,
		Variety:     r.Variety,
		Market:      r.Market,
		District:    r.District,
		State:       r.State,
		MinPrice:    parsePrice(r.MinPrice),
		MaxPrice:    parsePrice(r.MaxPrice),
		ModalPrice:  parsePrice(r.ModalPrice),
		ArrivalDate: parseArrival(r.ArrivalDate),
	}
}

// FetchPrices pulls one page of current prices, optionally filtered by
// state and commodity. Records without a parseable modal price or date
// are dropped.
func (c *Client) FetchPrices(ctx context.Context, state, commodity string, limit int) ([]model.PricePoint, error) {
	if limit <= 0 {
		limit = 500
	}
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))
	if state != "" {
		q.Set("filters[state]", state)
	}
	if commodity != "" {
		q.Set("filters[commodity]", commodity)
	}

	var out govResp
	op := func() error {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL+"?"+q.Encode(), nil)
		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			err := fmt.Errorf("data.gov.in status %d: %s", resp.StatusCode, string(b))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return json.NewDecoder(resp.Body).Decode(&out)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 4), ctx)); err != nil {
		return nil, err
	}

	points := make([]model.PricePoint, 0, len(out.Records))
	for _, r := range out.Records {
		p := r.toPoint()
		if p.ModalPrice <= 0 || p.ArrivalDate.IsZero() {
			continue
		}
		points = append(points, p)
	}
	return points, nil
}
