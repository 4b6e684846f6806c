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

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, c geo.Coordinate) (weather.Report, error) {
	if p.apiKey == "" {
		return weather.Report{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", c.Lat))
		values.Set("lon", fmt.Sprintf("%f", c.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Report{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Report{}, err
	}

	report := weather.Report{Provider: p.name}
	if payload.Main.Temp != nil {
		report.Temperature = roundedTemp(*payload.Main.Temp)
	}
	if len(payload.Weather) > 0 {
		report.Summary = payload.Weather[0].Main
	}
	return report, nil
}
