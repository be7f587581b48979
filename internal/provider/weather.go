package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agroai-backend/internal/common"
	"agroai-backend/internal/db"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWeatherBaseURL = "https://api.openweathermap.org"
	forecastDays          = 5
)

var ErrLocationNotFound = errors.New("location not found")

type WeatherConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// WeatherReport live conditions, advisory is derived by the caller
type WeatherReport struct {
	Location string
	Current  db.CurrentWeather
	Forecast []db.Forecast
}

// WeatherClient OpenWeather current conditions + 5 day forecast
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewWeatherClient(cfg WeatherConfig, logger *zap.Logger) *WeatherClient {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultWeatherBaseURL
	}
	return &WeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		client:  newHTTPClient(cfg.Timeout),
		logger:  logger,
	}
}

// Enabled false means callers should serve stored sample data
func (c *WeatherClient) Enabled() bool {
	return c.apiKey != ""
}

type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrent struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Weather []owmCondition `json:"weather"`
}

type owmForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp    float64 `json:"temp"`
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Rain struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
}

// Fetch accepts a place name or "lat,lon"
func (c *WeatherClient) Fetch(ctx context.Context, location string) (*WeatherReport, error) {
	lat, lon, ok := parseCoordinates(location)
	if !ok {
		var err error
		lat, lon, err = c.geocode(ctx, location)
		if err != nil {
			return nil, err
		}
	}

	var current owmCurrent
	var forecast owmForecast
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return getJSON(gctx, c.client, c.endpoint("/data/2.5/weather", lat, lon), &current)
	})
	g.Go(func() error {
		return getJSON(gctx, c.client, c.endpoint("/data/2.5/forecast", lat, lon), &forecast)
	})
	if err := g.Wait(); err != nil {
		c.logger.Warn("weather api failed", zap.String("location", location), zap.Error(err))
		return nil, fmt.Errorf("fetch weather for %q: %w", location, err)
	}

	return formatWeather(current, forecast), nil
}

func (c *WeatherClient) geocode(ctx context.Context, location string) (float64, float64, error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)

	var results []geoResult
	if err := getJSON(ctx, c.client, c.baseURL+"/geo/1.0/direct?"+q.Encode(), &results); err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", location, err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("geocode %q: %w", location, ErrLocationNotFound)
	}
	return results[0].Lat, results[0].Lon, nil
}

func (c *WeatherClient) endpoint(path string, lat, lon float64) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	return c.baseURL + path + "?" + q.Encode()
}

func parseCoordinates(location string) (float64, float64, bool) {
	latStr, lonStr, found := strings.Cut(location, ",")
	if !found {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func formatWeather(current owmCurrent, forecast owmForecast) *WeatherReport {
	report := &WeatherReport{
		Location: current.Name,
		Current: db.CurrentWeather{
			Temperature: math.Round(current.Main.Temp),
			Humidity:    current.Main.Humidity,
			Rainfall:    current.Rain.OneHour,
			WindSpeed:   math.Round(current.Wind.Speed * 3.6), // km/h
		},
		Forecast: []db.Forecast{},
	}
	if current.Sys.Country != "" {
		report.Location += ", " + current.Sys.Country
	}
	if len(current.Weather) > 0 {
		report.Current.Condition = current.Weather[0].Description
	}

	// forecast slots are 3 hours apart, fold them into days in arrival order
	index := map[string]int{}
	for _, item := range forecast.List {
		date := time.Unix(item.Dt, 0).UTC().Format(common.DateLayout)
		i, seen := index[date]
		if !seen {
			if len(report.Forecast) == forecastDays {
				break
			}
			day := db.Forecast{
				Date: date,
				Temp: db.TempRange{Min: item.Main.TempMin, Max: item.Main.TempMax},
			}
			if len(item.Weather) > 0 {
				day.Condition = item.Weather[0].Description
			}
			report.Forecast = append(report.Forecast, day)
			i = len(report.Forecast) - 1
			index[date] = i
		}
		day := &report.Forecast[i]
		day.Temp.Min = math.Min(day.Temp.Min, item.Main.TempMin)
		day.Temp.Max = math.Max(day.Temp.Max, item.Main.TempMax)
		day.Rainfall += item.Rain.ThreeHours
	}
	for i := range report.Forecast {
		report.Forecast[i].Temp.Min = math.Round(report.Forecast[i].Temp.Min)
		report.Forecast[i].Temp.Max = math.Round(report.Forecast[i].Temp.Max)
	}
	return report
}
