// Package yahoo fetches daily close history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"PairScope/internal/domain/models"
	"PairScope/internal/domain/repository"
	xhttp "PairScope/pkg/http"
	"PairScope/pkg/util"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// Client implements repository.PriceProvider against /v8/finance/chart.
type Client struct {
	http           *xhttp.Client
	baseURL        string
	suffix         string
	interval       repository.Interval
	lookbackMonths int
	now            func() time.Time
}

type Option func(*Client)

// WithSuffix appends an exchange suffix such as ".NS" to every symbol.
func WithSuffix(s string) Option { return func(c *Client) { c.suffix = s } }

func WithInterval(i repository.Interval) Option { return func(c *Client) { c.interval = i } }

func WithLookbackMonths(m int) Option { return func(c *Client) { c.lookbackMonths = m } }

func WithHTTPClient(hc *xhttp.Client) Option { return func(c *Client) { c.http = hc } }

func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New creates a chart API client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		interval:       repository.DefaultInterval(),
		lookbackMonths: 24,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient()
	}
	return c
}

var _ repository.PriceProvider = (*Client)(nil)

// Fetch returns the adjusted close history of symbol. Null closes become NaN.
func (c *Client) Fetch(ctx context.Context, symbol string) (models.PriceSeries, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.PriceSeries{}, fmt.Errorf("yahoo fetch: empty symbol: %w", models.ErrUnknownSymbol)
	}
	from, to := util.LookbackWindow(c.now(), c.lookbackMonths)

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol+c.suffix),
		QueryParams: map[string][]string{
			"period1":  {strconv.FormatInt(from.Unix(), 10)},
			"period2":  {strconv.FormatInt(to.Unix(), 10)},
			"interval": {string(c.interval)},
			"events":   {"div,split"},
		},
		Headers: map[string]string{"Accept": "application/json"},
	}, &resp)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("yahoo fetch %s: %w", symbol, classify(err))
	}
	if e := resp.Chart.Error; e != nil {
		if isNotFound(e.Code, e.Description) {
			return models.PriceSeries{}, fmt.Errorf("yahoo fetch %s: %s: %w", symbol, e.Description, models.ErrUnknownSymbol)
		}
		return models.PriceSeries{}, fmt.Errorf("yahoo fetch %s: %s: %w", symbol, e.Description, models.ErrProviderUnavailable)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Timestamp) == 0 {
		return models.PriceSeries{}, fmt.Errorf("yahoo fetch %s: no data: %w", symbol, models.ErrUnknownSymbol)
	}
	return toSeries(symbol, resp.Chart.Result[0])
}

func toSeries(symbol string, r chartResult) (models.PriceSeries, error) {
	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) == len(r.Timestamp) {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}
	if len(closes) != len(r.Timestamp) {
		return models.PriceSeries{}, fmt.Errorf("yahoo fetch %s: %d closes for %d timestamps: %w",
			symbol, len(closes), len(r.Timestamp), models.ErrProviderUnavailable)
	}

	s := models.PriceSeries{Symbol: symbol, Points: make([]models.PricePoint, 0, len(closes))}
	for i, ts := range r.Timestamp {
		v := math.NaN()
		if closes[i] != nil {
			v = *closes[i]
		}
		s.Points = append(s.Points, models.PricePoint{Time: time.Unix(ts, 0).UTC(), Close: v})
	}
	return s, nil
}

func classify(err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusNotFound {
			return fmt.Errorf("%v: %w", err, models.ErrUnknownSymbol)
		}
		var body chartResponse
		if json.Unmarshal(se.Body, &body) == nil && body.Chart.Error != nil &&
			isNotFound(body.Chart.Error.Code, body.Chart.Error.Description) {
			return fmt.Errorf("%v: %w", err, models.ErrUnknownSymbol)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%v: %w", err, models.ErrProviderUnavailable)
}

func isNotFound(code, desc string) bool {
	return code == "Not Found" || strings.Contains(strings.ToLower(desc), "no data found")
}
