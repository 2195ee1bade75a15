// Package scheduler runs the periodic SLA sweep: any non-terminal complaint
// past its deadline and not yet marked overdue is driven through the
// lifecycle engine's escalate transition. The sweep itself holds no lock;
// escalation is idempotent because the transition's conditional update
// refuses a complaint that is already overdue, so the interval is a tuning
// knob, not a correctness parameter.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/lifecycle"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
)

// EscalationStore is the slice of storage the sweep needs.
type EscalationStore interface {
	FindEscalatable(now time.Time) ([]models.Complaint, error)
}

// Machine is the lifecycle entry point the sweep drives. Manual transitions
// and escalation share this one consistency mechanism.
type Machine interface {
	Escalate(complaint *models.Complaint) (*models.Complaint, error)
}

// EscalationScheduler sweeps on a fixed interval.
type EscalationScheduler struct {
	Store    EscalationStore
	Machine  Machine
	Interval time.Duration

	now func() time.Time
}

// NewEscalationScheduler creates a sweep over the given store and engine.
func NewEscalationScheduler(store EscalationStore, machine Machine, interval time.Duration) *EscalationScheduler {
	return &EscalationScheduler{
		Store:    store,
		Machine:  machine,
		Interval: interval,
		now:      time.Now,
	}
}

// WithClock overrides the scheduler's time source. Used by tests.
func (s *EscalationScheduler) WithClock(clock func() time.Time) *EscalationScheduler {
	s.now = clock
	return s
}

// Run sweeps every Interval until ctx is cancelled.
func (s *EscalationScheduler) Run(ctx context.Context) {
	log.Printf("Escalation scheduler started (interval %s).", s.Interval)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Escalation scheduler stopped.")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep escalates every breached complaint it finds. A failure on one
// complaint never blocks the rest; failed escalations are retried by the
// next tick simply because the complaint still matches the scan.
func (s *EscalationScheduler) Sweep() {
	now := s.now()
	complaints, err := s.Store.FindEscalatable(now)
	if err != nil {
		log.Printf("ERROR: Escalation scan failed: %v", err)
		return
	}
	if len(complaints) == 0 {
		return
	}
	log.Printf("Escalation sweep found %d overdue complaints", len(complaints))

	for i := range complaints {
		complaint := complaints[i]
		if _, err := s.Machine.Escalate(&complaint); err != nil {
			if lifecycle.IsConflict(err) {
				// Another run or a manual transition got there first.
				continue
			}
			log.Printf("ERROR: Failed to escalate complaint %s: %v", complaint.ComplaintID, err)
			continue
		}
		log.Printf("Escalated complaint %s", complaint.ComplaintID)
	}
}
