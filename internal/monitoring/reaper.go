package monitoring

import (
	"context"
	"time"

	"github.com/avelara/keyauth-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Reaper periodically purges expired reset tokens. Live-token lookups
// already filter on expiry, so the reaper is hygiene only: it keeps the
// collection from accumulating dead documents.
type Reaper struct {
	tokens   services.ResetTokenStore
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
}

// NewReaper creates a reaper purging on the given standard cron
// expression.
func NewReaper(tokens services.ResetTokenStore, cronExpr string) (*Reaper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Reaper{
		tokens:   tokens,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the reaper's ticking loop.
func (r *Reaper) Run() {
	log.Info().Msg("Starting reset-token reaper")
	r.ticker = time.NewTicker(30 * time.Second)
	defer r.ticker.Stop()

	next := r.schedule.Next(time.Now())
	for {
		select {
		case <-r.done:
			log.Info().Msg("Stopping reset-token reaper")
			return
		case now := <-r.ticker.C:
			if now.Before(next) {
				continue
			}
			r.purge(now)
			next = r.schedule.Next(now)
		}
	}
}

// Stop halts the reaper.
func (r *Reaper) Stop() {
	r.done <- true
}

func (r *Reaper) purge(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deleted, err := r.tokens.DeleteExpired(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("Reaper: failed to purge expired reset tokens")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("Reaper: purged expired reset tokens")
	}
}
