package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

// ErrInsufficientData means the API returned no usable history.
var ErrInsufficientData = errors.New("insufficient market data")

// Client talks to the Kalshi public trade API.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string

	rateDelay   time.Duration
	retryDelay  time.Duration
	lastRequest time.Time
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    defaultBaseURL,
		rateDelay:  300 * time.Millisecond,
		retryDelay: 2 * time.Second,
	}
}

// Market is one market inside a series.
type Market struct {
	Ticker      string `json:"ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	YesSubTitle string `json:"yes_sub_title"`
}

// Candlestick carries the subset of candle fields we read.
type Candlestick struct {
	EndPeriodTS int64  `json:"end_period_ts"`
	TS          int64  `json:"ts"`
	Price       *Price `json:"price"`
	Close       *int   `json:"close"`
	YesPrice    *int   `json:"yes_price"`
}

type Price struct {
	Close *int `json:"close"`
	Mean  *int `json:"mean"`
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("kalshi: %s returned status %d", e.url, e.code)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	// Enforce the rate limit between consecutive requests.
	if elapsed := time.Since(c.lastRequest); elapsed < c.rateDelay {
		select {
		case <-time.After(c.rateDelay - elapsed):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.lastRequest = time.Now()

	u := c.BaseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NovigCharts/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode, url: u}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Markets returns all markets in a series, in API order.
func (c *Client) Markets(ctx context.Context, seriesTicker string) ([]Market, error) {
	params := url.Values{}
	params.Set("series_ticker", seriesTicker)
	params.Set("limit", "100")

	var resp struct {
		Markets []Market `json:"markets"`
	}
	if err := c.get(ctx, "/markets", params, &resp); err != nil {
		return nil, err
	}
	return resp.Markets, nil
}

// Candlesticks returns hourly history for one market over the last daysBack days.
func (c *Client) Candlesticks(ctx context.Context, seriesTicker, marketTicker string, daysBack, periodInterval int) ([]Candlestick, error) {
	now := time.Now()
	params := url.Values{}
	params.Set("start_ts", fmt.Sprintf("%d", now.AddDate(0, 0, -daysBack).Unix()))
	params.Set("end_ts", fmt.Sprintf("%d", now.Unix()))
	params.Set("period_interval", fmt.Sprintf("%d", periodInterval))

	endpoint := fmt.Sprintf("/series/%s/markets/%s/candlesticks", seriesTicker, marketTicker)
	var resp struct {
		Candlesticks []Candlestick `json:"candlesticks"`
	}
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return resp.Candlesticks, nil
}

// ExtractPrice pulls the close price in cents out of a candle,
// falling back close -> mean -> flat fields -> 0.
func ExtractPrice(candle Candlestick) int {
	if candle.Price != nil {
		if candle.Price.Close != nil {
			return *candle.Price.Close
		}
		if candle.Price.Mean != nil {
			return *candle.Price.Mean
		}
		return 0
	}
	if candle.Close != nil {
		return *candle.Close
	}
	if candle.YesPrice != nil {
		return *candle.YesPrice
	}
	return 0
}

// CandidateName derives a display name from market metadata using a fixed
// priority chain: yes_sub_title, subtitle, the "Will X ...?" title pattern,
// ticker suffix, full ticker.
func CandidateName(m Market) string {
	if name := strings.TrimSpace(m.YesSubTitle); name != "" {
		return name
	}
	if name := strings.TrimSpace(m.Subtitle); name != "" {
		return name
	}
	for _, pattern := range []string{"Will ", "will "} {
		if idx := strings.Index(m.Title, pattern); idx >= 0 {
			name := m.Title[idx+len(pattern):]
			name = strings.SplitN(name, "?", 2)[0]
			name = strings.SplitN(name, " win", 2)[0]
			name = strings.SplitN(name, " be ", 2)[0]
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	if idx := strings.LastIndex(m.Ticker, "-"); idx >= 0 {
		return strings.ToUpper(m.Ticker[idx+1:])
	}
	if m.Ticker != "" {
		return m.Ticker
	}
	return "Unknown"
}

func (c *Client) candlePoints(ctx context.Context, seriesTicker string, m Market, name string, daysBack, periodInterval int) ([]Point, error) {
	candles, err := c.Candlesticks(ctx, seriesTicker, m.Ticker, daysBack, periodInterval)
	if err != nil {
		return nil, err
	}
	points := make([]Point, 0, len(candles))
	for _, candle := range candles {
		ts := candle.EndPeriodTS
		if ts == 0 {
			ts = candle.TS
		}
		points = append(points, Point{
			Timestamp: time.Unix(ts, 0).UTC(),
			Candidate: name,
			Odds:      float64(ExtractPrice(candle)) / 100,
		})
	}
	return points, nil
}

// History fetches candlesticks for up to maxMarkets markets and pivots them
// into a wide table. Rate-limited markets are retried once after a pause;
// other per-market failures are logged by the caller via the returned table
// simply missing that column.
func (c *Client) History(ctx context.Context, markets []Market, seriesTicker string, daysBack, periodInterval, maxMarkets int) (*Table, error) {
	if maxMarkets < len(markets) {
		markets = markets[:maxMarkets]
	}

	var all []Point
	for i, m := range markets {
		name := CandidateName(m)
		fmt.Printf("  [%d/%d] Fetching: %s\n", i+1, len(markets), name)

		points, err := c.candlePoints(ctx, seriesTicker, m, name, daysBack, periodInterval)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && se.code == http.StatusTooManyRequests {
				fmt.Println("    Rate limited, retrying...")
				select {
				case <-time.After(c.retryDelay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				points, err = c.candlePoints(ctx, seriesTicker, m, name, daysBack, periodInterval)
			}
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				fmt.Printf("    Error: %v\n", err)
				continue
			}
		}
		all = append(all, points...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no candlesticks for series %s", ErrInsufficientData, seriesTicker)
	}
	return Pivot(all), nil
}
