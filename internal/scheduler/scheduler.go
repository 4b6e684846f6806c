package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// LocationRefresher is the coordinator hook the periodic job drives.
type LocationRefresher interface {
	RefreshDeviceLocation()
}

// Scheduler periodically re-requests the device position so the dashboard
// follows the machine around even without map interaction. The coordinator
// drops the request when geolocation is toggled off.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    LocationRefresher
	interval  time.Duration
}

// New creates a new Scheduler.
func New(target LocationRefresher, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 10
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: requesting device location refresh")
		s.target.RefreshDeviceLocation()
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
