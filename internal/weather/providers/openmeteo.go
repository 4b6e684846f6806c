package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"weather-dashboard/internal/geo"
	"weather-dashboard/internal/weather"
)

// OpenMeteoProvider implements weather.Provider for Open-Meteo. It needs no
// API key, which makes it the default source.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, c geo.Coordinate) (weather.Report, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", c.Lat))
		values.Set("longitude", fmt.Sprintf("%f", c.Lon))
		values.Set("current_weather", "true")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Report{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather struct {
			Temperature *float64 `json:"temperature"`
			WeatherCode int      `json:"weathercode"`
		} `json:"current_weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Report{}, err
	}

	report := weather.Report{
		Summary:  describeOpenMeteoCode(payload.CurrentWeather.WeatherCode),
		Provider: p.name,
	}
	if payload.CurrentWeather.Temperature != nil {
		report.Temperature = roundedTemp(*payload.CurrentWeather.Temperature)
	}
	return report, nil
}

// describeOpenMeteoCode maps Open-Meteo weather codes to a short summary
// (simplified; the full WMO table distinguishes many more cases).
func describeOpenMeteoCode(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code >= 1 && code <= 3:
		return "Partly Cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 95:
		return "Thunderstorm"
	default:
		return ""
	}
}
