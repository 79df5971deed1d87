package scheduler

import (
	"context"
	"errors"

	"github.com/robfig/cron"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
)

// StartCron schedules the nightly pass on the configured cron spec and
// returns a stop function. A tick that finds another run in progress is
// logged and skipped, not an error.
func (s *Scheduler) StartCron() (func(), error) {
	c := cron.New()
	err := c.AddFunc(s.cfg.Scheduler.CronSpec, func() {
		if _, err := s.RunDailyOptimization(context.Background(), types.RunTriggerScheduled); err != nil {
			if errors.Is(err, enginerr.ErrRunInProgress) {
				s.log.Info("scheduled run skipped, another run in progress")
				return
			}
			s.log.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	s.log.Info("cron schedule active", "spec", s.cfg.Scheduler.CronSpec)
	return c.Stop, nil
}
