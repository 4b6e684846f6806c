package weather

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"weather-dashboard/internal/geo"
)

// Service wraps a single provider and tags each outbound fetch with a
// correlation id. Completions are not guaranteed to arrive in request order,
// so the id is what ties a log line to the request that produced it.
type Service struct {
	provider Provider
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// FetchCurrent fetches current conditions for the given coordinate.
func (s *Service) FetchCurrent(ctx context.Context, c geo.Coordinate) (Report, error) {
	if s.provider == nil {
		return Report{}, fmt.Errorf("no weather provider configured")
	}

	id := uuid.NewString()
	log.Printf("DEBUG: weather fetch %s started for (%.4f, %.4f) via %s", id, c.Lat, c.Lon, s.provider.Name())

	report, err := s.provider.FetchCurrent(ctx, c)
	if err != nil {
		log.Printf("weather fetch %s failed: %v", id, err)
		return Report{}, err
	}

	log.Printf("DEBUG: weather fetch %s completed: %s", id, report.Summary)
	return report, nil
}
