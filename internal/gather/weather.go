// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snlongmore/morning-report/internal/httputil"
	"github.com/snlongmore/morning-report/pkg/types"
)

// owmAPIBase is the OpenWeatherMap endpoint. Declared as a var so tests
// can substitute an httptest server.
var owmAPIBase = "https://api.openweathermap.org/data/2.5"

// knownCoords resolves configured place names to coordinates without a
// geocoding round trip. Names not listed here fall back to the API's
// free-text query.
var knownCoords = map[string][2]float64{
	"west kirby, uk": {53.3726, -3.1836},
	"west kirby":     {53.3726, -3.1836},
	"liverpool, uk":  {53.4084, -2.9916},
	"london, uk":     {51.5074, -0.1278},
}

// CurrentConditions is the present weather at one location.
type CurrentConditions struct {
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// ForecastSlot is one 3-hourly forecast entry.
type ForecastSlot struct {
	Time        string  `json:"time"`
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
}

// LocationForecast is the weather payload for one location. Error is set
// when that location's fetch failed; other locations are unaffected.
type LocationForecast struct {
	Current  *CurrentConditions `json:"current,omitempty"`
	Forecast []ForecastSlot     `json:"forecast,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// WeatherReport is the weather gatherer payload.
type WeatherReport struct {
	Locations map[string]LocationForecast `json:"locations"`
}

// WeatherGatherer fetches current conditions and a 24-hour forecast from
// OpenWeatherMap for each configured location.
type WeatherGatherer struct {
	cfg    types.WeatherConfig
	client *httputil.RetryClient
	log    *logrus.Logger
}

// NewWeatherGatherer returns a weather gatherer.
func NewWeatherGatherer(cfg types.WeatherConfig, client *httputil.RetryClient, log *logrus.Logger) *WeatherGatherer {
	if len(cfg.Locations) == 0 {
		cfg.Locations = []string{"West Kirby, UK"}
	}
	return &WeatherGatherer{cfg: cfg, client: client, log: log}
}

// Name implements Gatherer.
func (g *WeatherGatherer) Name() string { return string(SourceWeather) }

// Available reports whether an API key is configured.
func (g *WeatherGatherer) Available() bool {
	return g.cfg.APIKey != "" && !strings.HasPrefix(g.cfg.APIKey, "${")
}

// Gather fetches weather for every configured location. A failed location
// is recorded inline so the rest of the briefing still gets its forecast.
func (g *WeatherGatherer) Gather(ctx context.Context) (any, error) {
	report := WeatherReport{Locations: make(map[string]LocationForecast, len(g.cfg.Locations))}

	for _, location := range g.cfg.Locations {
		params := g.queryParams(location)

		current, err := g.fetchCurrent(ctx, params)
		if err != nil {
			g.log.WithFields(logrus.Fields{"location": location, "error": err}).Warn("weather fetch failed")
			report.Locations[location] = LocationForecast{Error: err.Error()}
			continue
		}

		forecast, err := g.fetchForecast(ctx, params)
		if err != nil {
			// Current conditions alone are still worth reporting.
			g.log.WithFields(logrus.Fields{"location": location, "error": err}).Warn("forecast fetch failed")
		}

		report.Locations[location] = LocationForecast{Current: current, Forecast: forecast}
	}

	return report, nil
}

func (g *WeatherGatherer) queryParams(location string) url.Values {
	params := url.Values{}
	params.Set("appid", g.cfg.APIKey)
	params.Set("units", "metric")
	if coords, ok := knownCoords[strings.ToLower(strings.TrimSpace(location))]; ok {
		params.Set("lat", fmt.Sprintf("%.4f", coords[0]))
		params.Set("lon", fmt.Sprintf("%.4f", coords[1]))
	} else {
		params.Set("q", location)
	}
	return params
}

// owmWeather mirrors the fields used from the /weather response.
type owmWeather struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// owmForecast mirrors the fields used from the /forecast response.
type owmForecast struct {
	List []struct {
		DtTxt   string `json:"dt_txt"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	} `json:"list"`
}

func (g *WeatherGatherer) fetchCurrent(ctx context.Context, params url.Values) (*CurrentConditions, error) {
	var payload owmWeather
	if err := g.getJSON(ctx, "/weather", params, &payload); err != nil {
		return nil, err
	}

	current := &CurrentConditions{
		Temp:      payload.Main.Temp,
		FeelsLike: payload.Main.FeelsLike,
		Humidity:  payload.Main.Humidity,
		WindSpeed: payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		current.Description = payload.Weather[0].Description
	}
	return current, nil
}

// forecastSlots is the next 24 hours at 3-hour resolution.
const forecastSlots = 8

func (g *WeatherGatherer) fetchForecast(ctx context.Context, params url.Values) ([]ForecastSlot, error) {
	var payload owmForecast
	if err := g.getJSON(ctx, "/forecast", params, &payload); err != nil {
		return nil, err
	}

	var slots []ForecastSlot
	for _, item := range payload.List {
		if len(slots) == forecastSlots {
			break
		}
		slot := ForecastSlot{Time: item.DtTxt, Temp: item.Main.Temp}
		if len(item.Weather) > 0 {
			slot.Description = item.Weather[0].Description
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (g *WeatherGatherer) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		owmAPIBase+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenWeatherMap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenWeatherMap returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenWeatherMap response: %w", err)
	}
	return nil
}
