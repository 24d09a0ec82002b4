// Package sweeper runs the periodic background GC over presence and
// moderation state. It goes through the same store methods and locks as
// the request path; the effect pass catches entries the lazy expiry in
// the poll check never reaches.
package sweeper

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/alexander-datskov/chat67/internal/metrics"
	"github.com/alexander-datskov/chat67/internal/store"
)

// PresenceMaxIdle is the absolute inactivity threshold. Unlike the
// heartbeat's opportunistic 5-minute sweep, this one excludes no one.
const PresenceMaxIdle = 15 * time.Minute

// Sweeper owns the gocron scheduler driving the periodic sweep.
type Sweeper struct {
	state     *store.State
	logger    zerolog.Logger
	scheduler *gocron.Scheduler
}

// New creates a sweeper running every interval.
func New(state *store.State, interval time.Duration, logger zerolog.Logger) *Sweeper {
	s := &Sweeper{
		state:     state,
		logger:    logger,
		scheduler: gocron.NewScheduler(time.UTC),
	}
	s.scheduler.Every(interval).Do(s.Sweep)
	return s
}

// Start launches the background schedule.
func (s *Sweeper) Start() {
	s.scheduler.StartAsync()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// Sweep runs one pass: expired effects out of the moderation maps, and
// presence records idle past the absolute threshold.
func (s *Sweeper) Sweep() {
	now := time.Now()

	effects := s.state.Moderation.SweepExpired(now)
	presence := s.state.Presence.SweepInactive(PresenceMaxIdle, "", now)

	metrics.SweepRuns.Inc()
	metrics.SweepRemovals.WithLabelValues("effect").Add(float64(effects))
	metrics.SweepRemovals.WithLabelValues("presence").Add(float64(presence))

	if effects > 0 || presence > 0 {
		s.logger.Info().
			Int("expired_effects", effects).
			Int("stale_presence", presence).
			Msg("background sweep completed")
	} else {
		s.logger.Debug().Msg("background sweep completed")
	}
}
