package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"dayplan/internal/model"
	"dayplan/internal/repository"
)

// RolloverScheduler drives the nightly rollover from a periodic tick. Every
// tick tries to claim the current local date of each known user timezone;
// after the first successful claim the uniqueness constraint turns every
// later attempt for that (timezone, date) into a cheap no-op, so the tick
// interval only affects how soon after local midnight a run starts.
type RolloverScheduler struct {
	cron     *cron.Cron
	rollover *RolloverService
	users    *repository.UserRepository
	interval time.Duration
}

func NewRolloverScheduler(rollover *RolloverService, users *repository.UserRepository, interval time.Duration) *RolloverScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RolloverScheduler{
		cron:     cron.New(),
		rollover: rollover,
		users:    users,
		interval: interval,
	}
}

func (s *RolloverScheduler) Start() error {
	spec := fmt.Sprintf("@every %ds", int(s.interval.Seconds()))
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *RolloverScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Tick attempts one rollover claim per known timezone. Claim conflicts are
// the normal case on every tick after the first win and are not logged.
func (s *RolloverScheduler) Tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	timezones, err := s.users.ListTimezones(ctx)
	if err != nil {
		log.Printf("rollover tick: list timezones: %v", err)
		return
	}

	for _, tz := range timezones {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("rollover tick: invalid timezone %q: %v", tz, err)
			continue
		}
		today := time.Now().In(loc).Format(model.DateLayout)

		if _, err := s.rollover.RunForTimezone(ctx, tz, today); err != nil {
			if errors.Is(err, repository.ErrRolloverClaimed) {
				continue
			}
			log.Printf("rollover tick: %s: %v", tz, err)
		}
	}
}
