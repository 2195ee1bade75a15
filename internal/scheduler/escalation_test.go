package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/lifecycle"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/scheduler"

	"github.com/stretchr/testify/mock"
)

type MockEscalationStore struct {
	mock.Mock
}

func (m *MockEscalationStore) FindEscalatable(now time.Time) ([]models.Complaint, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

type MockMachine struct {
	mock.Mock
}

func (m *MockMachine) Escalate(complaint *models.Complaint) (*models.Complaint, error) {
	args := m.Called(complaint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func overdueComplaint(id string) models.Complaint {
	return models.Complaint{
		ComplaintID: id,
		Status:      models.StatusSubmitted,
		SLA:         models.SLAInfo{Deadline: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

// TestSweep_EscalatesEveryMatch verifies one Escalate call per breached
// complaint found by the scan.
func TestSweep_EscalatesEveryMatch(t *testing.T) {
	// Arrange
	store := new(MockEscalationStore)
	machine := new(MockMachine)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sweep := scheduler.NewEscalationScheduler(store, machine, time.Hour).
		WithClock(func() time.Time { return now })

	store.On("FindEscalatable", now).Return([]models.Complaint{
		overdueComplaint("REX20260001"),
		overdueComplaint("REX20260002"),
	}, nil)
	machine.On("Escalate", mock.AnythingOfType("*models.Complaint")).Return(&models.Complaint{}, nil)

	// Act
	sweep.Sweep()

	// Assert
	machine.AssertNumberOfCalls(t, "Escalate", 2)
}

// TestSweep_ToleratesLostRace verifies a conflict from the engine (another
// run already escalated the complaint) is silently skipped.
func TestSweep_ToleratesLostRace(t *testing.T) {
	store := new(MockEscalationStore)
	machine := new(MockMachine)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sweep := scheduler.NewEscalationScheduler(store, machine, time.Hour).
		WithClock(func() time.Time { return now })

	store.On("FindEscalatable", now).Return([]models.Complaint{
		overdueComplaint("REX20260001"),
		overdueComplaint("REX20260002"),
	}, nil)
	machine.On("Escalate", mock.AnythingOfType("*models.Complaint")).
		Return(nil, &lifecycle.Error{Kind: lifecycle.KindConflict, Message: "already escalated"}).Once()
	machine.On("Escalate", mock.AnythingOfType("*models.Complaint")).Return(&models.Complaint{}, nil).Once()

	sweep.Sweep()

	// The second complaint is still escalated after the first lost its race.
	machine.AssertNumberOfCalls(t, "Escalate", 2)
}

// TestSweep_FailureDoesNotBlockRest verifies an unexpected engine error on
// one complaint never aborts the sweep.
func TestSweep_FailureDoesNotBlockRest(t *testing.T) {
	store := new(MockEscalationStore)
	machine := new(MockMachine)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sweep := scheduler.NewEscalationScheduler(store, machine, time.Hour).
		WithClock(func() time.Time { return now })

	store.On("FindEscalatable", now).Return([]models.Complaint{
		overdueComplaint("REX20260001"),
		overdueComplaint("REX20260002"),
		overdueComplaint("REX20260003"),
	}, nil)
	machine.On("Escalate", mock.AnythingOfType("*models.Complaint")).
		Return(nil, errors.New("db timeout")).Once()
	machine.On("Escalate", mock.AnythingOfType("*models.Complaint")).Return(&models.Complaint{}, nil).Twice()

	sweep.Sweep()

	machine.AssertNumberOfCalls(t, "Escalate", 3)
}

// TestSweep_ScanFailure verifies a failed scan is a no-op, retried on the
// next tick.
func TestSweep_ScanFailure(t *testing.T) {
	store := new(MockEscalationStore)
	machine := new(MockMachine)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sweep := scheduler.NewEscalationScheduler(store, machine, time.Hour).
		WithClock(func() time.Time { return now })

	store.On("FindEscalatable", now).Return(nil, errors.New("db down"))

	sweep.Sweep()

	machine.AssertNotCalled(t, "Escalate", mock.Anything)
}

// TestRun_StopsOnContextCancel verifies the loop exits when the context is
// cancelled.
func TestRun_StopsOnContextCancel(t *testing.T) {
	store := new(MockEscalationStore)
	machine := new(MockMachine)
	sweep := scheduler.NewEscalationScheduler(store, machine, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweep.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
