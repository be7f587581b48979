package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agroai-backend/internal/db"

	"go.uber.org/zap"
)

const (
	DefaultMarketBaseURL = "https://api.data.gov.in/resource/35985678-0d79-46b4-9ed6-6f13308a1d24"
	marketUnit           = "per quintal"
	marketPageSize       = 100
)

type MarketConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// MarketClient Agmarknet daily mandi prices from data.gov.in
type MarketClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

func NewMarketClient(cfg MarketConfig, logger *zap.Logger) *MarketClient {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultMarketBaseURL
	}
	return &MarketClient{
		apiKey:  cfg.APIKey,
		baseURL: base,
		client:  newHTTPClient(cfg.Timeout),
		logger:  logger,
		now:     time.Now,
	}
}

func (c *MarketClient) Enabled() bool {
	return c.apiKey != ""
}

// numeric data.gov.in sends prices as strings or numbers depending on the resource
type numeric float64

func (n *numeric) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" || s == "NA" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = numeric(f)
	return nil
}

type agmarkRecord struct {
	Commodity   string  `json:"commodity"`
	Market      string  `json:"market"`
	Variety     string  `json:"variety"`
	State       string  `json:"state"`
	District    string  `json:"district"`
	ArrivalDate string  `json:"arrival_date"`
	PriceDate   string  `json:"price_date"`
	ModalPrice  numeric `json:"modal_price"`
	MinPrice    numeric `json:"min_price"`
	MaxPrice    numeric `json:"max_price"`
	Arrivals    numeric `json:"arrivals"`
}

type agmarkResponse struct {
	Total   int            `json:"total"`
	Records []agmarkRecord `json:"records"`
}

// Prices query live prices; an empty crop/state/district is not filtered on
func (c *MarketClient) Prices(ctx context.Context, crop, state, district string) ([]db.MarketEntry, error) {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(marketPageSize))
	if crop != "" {
		q.Set("filters[commodity]", crop)
	}
	if state != "" {
		q.Set("filters[state]", state)
	}
	if district != "" {
		q.Set("filters[district]", district)
	}

	var resp agmarkResponse
	if err := getJSON(ctx, c.client, c.baseURL+"?"+q.Encode(), &resp); err != nil {
		c.logger.Warn("market api failed", zap.String("crop", crop), zap.Error(err))
		return nil, fmt.Errorf("fetch market prices: %w", err)
	}
	return c.formatRecords(resp.Records), nil
}

func (c *MarketClient) formatRecords(records []agmarkRecord) []db.MarketEntry {
	entries := make([]db.MarketEntry, 0, len(records))
	for _, r := range records {
		quality := r.Variety
		if quality == "" {
			quality = "Standard"
		}
		entries = append(entries, db.MarketEntry{
			Crop:     r.Commodity,
			Market:   r.Market,
			Price:    float64(r.ModalPrice),
			Unit:     marketUnit,
			Quality:  quality,
			Date:     c.recordDate(r),
			Trend:    CalculateTrend(float64(r.ModalPrice), float64(r.MinPrice), float64(r.MaxPrice)),
			Volume:   float64(r.Arrivals),
			State:    r.State,
			District: r.District,
		})
	}
	return entries
}

func (c *MarketClient) recordDate(r agmarkRecord) time.Time {
	for _, raw := range []string{r.ArrivalDate, r.PriceDate} {
		if raw == "" {
			continue
		}
		for _, layout := range []string{"02/01/2006", "2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return c.now()
}

// CalculateTrend compares the modal price with the midpoint of the day's range.
// Missing min/max default to the modal price.
func CalculateTrend(modal, low, high float64) string {
	if low == 0 {
		low = modal
	}
	if high == 0 {
		high = modal
	}
	mid := (low + high) / 2
	switch {
	case modal > mid:
		return db.TrendRising
	case modal < mid:
		return db.TrendFalling
	default:
		return db.TrendStable
	}
}

type samplePrice struct {
	market  string
	price   float64
	quality string
	trend   string
}

var sampleMarkets = map[string]struct {
	name   string
	prices []samplePrice
}{
	"rice": {"Rice", []samplePrice{
		{"Delhi Mandi", 2200, "Grade A", db.TrendStable},
		{"Mumbai APMC", 2150, "Grade B", db.TrendRising},
	}},
	"wheat": {"Wheat", []samplePrice{
		{"Punjab Mandi", 1900, "Grade A", db.TrendStable},
		{"UP Mandi", 1850, "Grade B", db.TrendFalling},
	}},
	"tomato": {"Tomato", []samplePrice{
		{"Bangalore Market", 3500, "Premium", db.TrendRising},
		{"Pune Market", 3200, "Standard", db.TrendStable},
	}},
}

// SampleMarketData static prices served when no live source can answer
func SampleMarketData(crop string, now time.Time) []db.MarketEntry {
	sample, ok := sampleMarkets[strings.ToLower(crop)]
	if !ok {
		name := crop
		if name == "" {
			name = "Mixed"
		}
		return []db.MarketEntry{{
			Crop: name, Market: "Local Market", Price: 2000, Unit: marketUnit,
			Quality: "Standard", Date: now, Trend: db.TrendStable,
		}}
	}

	entries := make([]db.MarketEntry, 0, len(sample.prices))
	for _, p := range sample.prices {
		entries = append(entries, db.MarketEntry{
			Crop:    sample.name,
			Market:  p.market,
			Price:   p.price,
			Unit:    marketUnit,
			Quality: p.quality,
			Date:    now,
			Trend:   p.trend,
		})
	}
	return entries
}
