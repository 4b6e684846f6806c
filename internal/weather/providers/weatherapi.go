package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"weather-dashboard/internal/common"
	"weather-dashboard/internal/geo"
	"weather-dashboard/internal/weather"
)

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, c geo.Coordinate) (weather.Report, error) {
	if p.apiKey == "" {
		return weather.Report{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", fmt.Sprintf("%f,%f", c.Lat, c.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Report{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			TempC     *float64 `json:"temp_c"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Report{}, err
	}

	report := weather.Report{
		Summary:  normalizeConditionText(payload.Current.Condition.Text),
		Provider: p.name,
	}
	if payload.Current.TempC != nil {
		report.Temperature = roundedTemp(*payload.Current.TempC)
	}
	return report, nil
}

// normalizeConditionText collapses WeatherAPI's verbose condition strings to
// the short summaries the overlay expects.
func normalizeConditionText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case text == "":
		return ""
	case common.HasAny(lower, "thunder", "storm"):
		return "Thunderstorm"
	case common.HasAny(lower, "snow", "sleet", "blizzard"):
		return "Snow"
	case common.HasAny(lower, "rain", "shower", "drizzle"):
		return "Rain"
	case common.HasAny(lower, "fog", "mist"):
		return "Fog"
	case strings.Contains(lower, "cloud"):
		return "Cloudy"
	case common.HasAny(lower, "sunny", "clear"):
		return "Clear"
	default:
		return text
	}
}
