package services

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"hotel-review-ops/models"
)

// Scheduler owns at most one outstanding timer per automation slug. Refresh
// always cancels before rearming, which is what prevents duplicate timers
// across saves, manual triggers and natural firing. It assumes a single
// process instance: two schedulers over the same database would double-fire.
type Scheduler struct {
	db     *gorm.DB
	mu     sync.Mutex
	timers map[string]*time.Timer
	now    func() time.Time
}

func NewScheduler(db *gorm.DB) *Scheduler {
	return &Scheduler{
		db:     db,
		timers: make(map[string]*time.Timer),
		now:    time.Now,
	}
}

// Refresh cancels any pending timer for slug and rearms it from the stored
// config. A missing or disabled integration leaves the scheduler idle until
// the next save. Error status stays schedulable: a failed run must not kill
// the schedule, and only save flips active/inactive.
func (s *Scheduler) Refresh(slug string) {
	s.mu.Lock()
	if timer, ok := s.timers[slug]; ok {
		timer.Stop()
		delete(s.timers, slug)
	}
	s.mu.Unlock()

	integration, config, err := GetAutomationConfig(s.db, slug)
	if err != nil {
		log.Printf("scheduler config load error (slug: %s): %v", slug, err)
		return
	}
	if integration == nil || config == nil {
		log.Printf("scheduler idle (slug: %s): automation is not configured", slug)
		return
	}
	if integration.Status == models.IntegrationStatusInactive {
		log.Printf("scheduler idle (slug: %s): status is %s", slug, integration.Status)
		return
	}

	now := s.now()
	next := NextRun(config.Schedule, now)
	delay := next.Sub(now)
	if delay < time.Second {
		// stale clocks or persisted state must not turn into a busy loop
		delay = time.Second
	}

	s.mu.Lock()
	if timer, ok := s.timers[slug]; ok {
		// a concurrent Refresh may have armed between the cancel phase and
		// here; never overwrite a live timer without stopping it
		timer.Stop()
	}
	s.timers[slug] = time.AfterFunc(delay, func() { s.fire(slug) })
	s.mu.Unlock()

	log.Printf("scheduler armed (slug: %s): next run at %s", slug, next.Format(time.RFC3339))
}

func (s *Scheduler) fire(slug string) {
	// a failed run must not silently stop future runs
	defer s.Refresh(slug)

	result := TriggerAutomation(s.db, slug, "schedule")
	if !result.Success {
		log.Printf("scheduled trigger failed (slug: %s): %s", slug, result.Error)
		return
	}
	log.Printf("scheduled trigger done (slug: %s)", slug)
}

// Stop cancels every pending timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for slug, timer := range s.timers {
		timer.Stop()
		delete(s.timers, slug)
	}
}

// pendingTimers reports how many timers are currently armed.
func (s *Scheduler) pendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
