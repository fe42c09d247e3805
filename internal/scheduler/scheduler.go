package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/go-co-op/gocron"
)

// Refresher refreshes the cached weather record for one coordinate.
type Refresher interface {
	Refresh(ctx context.Context, coord geo.Coordinate)
}

// Scheduler periodically refreshes cached records for a set of coordinates so
// the panel's cache stays warm between clicks.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	refresher   Refresher
	coordinates []geo.Coordinate
	interval    time.Duration
	log         *slog.Logger
}

// New creates a Scheduler over the given coordinates.
func New(coordinates []geo.Coordinate, interval time.Duration, refresher Refresher, log *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		refresher:   refresher,
		coordinates: coordinates,
		interval:    interval,
		log:         log.With("component", "scheduler"),
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if len(s.coordinates) == 0 {
		s.log.Info("No coordinates configured, nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.log.Debug("Running weather refresh job", "coordinates", len(s.coordinates))

		var wg sync.WaitGroup
		for _, coord := range s.coordinates {
			coord := coord
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				s.refresher.Refresh(ctx, coord)
			}()
		}
		wg.Wait()
		s.log.Debug("Completed weather refresh job")
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
