package schedule

import (
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler wraps gocron for the posting daemon. Jobs are tagged so a
// schedule can be replaced at runtime.
type Scheduler struct {
	scheduler *gocron.Scheduler
}

func NewScheduler() *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Scheduler{scheduler: s}
}

// Start starts the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// ScheduleCron schedules a job with a cron expression.
func (s *Scheduler) ScheduleCron(tag, cronExpr string, job func() error) error {
	_, err := s.scheduler.Cron(cronExpr).Tag(tag).Do(job)
	return err
}

// Jobs returns all scheduled jobs.
func (s *Scheduler) Jobs() []*gocron.Job {
	return s.scheduler.Jobs()
}
