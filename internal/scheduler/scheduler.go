package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler fires the run callback on a cron schedule. An empty expression
// disables scheduling entirely.
type Scheduler struct {
	cron *cron.Cron
	run  func()
}

func New(run func()) *Scheduler {
	return &Scheduler{cron: cron.New(), run: run}
}

// Start registers the cron expression and begins firing. Overlapping runs
// are the callback's problem; the runner serializes passes itself.
func (s *Scheduler) Start(expr string) error {
	if expr == "" {
		log.Println("[scheduler] no schedule configured, running on demand only")
		return nil
	}
	if _, err := s.cron.AddFunc(expr, s.run); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[scheduler] schedule %q registered", expr)
	return nil
}

// Stop halts the cron loop, waiting for a running callback to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[scheduler] stopped")
}
