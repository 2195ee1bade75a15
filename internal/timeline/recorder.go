// Package timeline is the append-only recorder for the citizen-visible
// audit trail of a complaint. Entries are never edited, removed, or
// reordered after they are appended; downstream consumers (notifications,
// scorecards, public dashboards) rely on that.
package timeline

import (
	"errors"
	"fmt"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
)

// MinForwardDetails is the minimum length of the justification attached to
// a responsibility transfer. Forwards are citizen-visible, so a throwaway
// reason is not acceptable.
const MinForwardDetails = 20

var (
	ErrOutOfOrder       = errors.New("timeline: event timestamp precedes the last entry")
	ErrMissingTimestamp = errors.New("timeline: event timestamp is required")
	ErrMissingAuthority = errors.New("timeline: transfer event requires a target authority")
)

// DetailsTooShortError reports a details field below the minimum for its
// action type.
type DetailsTooShortError struct {
	Action models.Action
	Min    int
}

func (e *DetailsTooShortError) Error() string {
	return fmt.Sprintf("timeline: %s event requires details of at least %d characters", e.Action, e.Min)
}

// Append validates ev against the complaint's current timeline and returns
// a copy of the complaint with ev appended. The input complaint and its
// prior entries are left untouched.
func Append(c *models.Complaint, ev models.TimelineEvent) (*models.Complaint, error) {
	if ev.Timestamp.IsZero() {
		return nil, ErrMissingTimestamp
	}
	if n := len(c.Timeline); n > 0 && ev.Timestamp.Before(c.Timeline[n-1].Timestamp) {
		return nil, ErrOutOfOrder
	}

	if ev.Action == models.ActionForwarded {
		if len(ev.Details) < MinForwardDetails {
			return nil, &DetailsTooShortError{Action: ev.Action, Min: MinForwardDetails}
		}
		if ev.ToAuthority == nil {
			return nil, ErrMissingAuthority
		}
	}

	ev.ComplaintID = c.ID

	out := *c
	out.Timeline = make([]models.TimelineEvent, len(c.Timeline), len(c.Timeline)+1)
	copy(out.Timeline, c.Timeline)
	out.Timeline = append(out.Timeline, ev)
	return &out, nil
}

// Last returns the most recent entry, or nil for an empty timeline.
func Last(c *models.Complaint) *models.TimelineEvent {
	if len(c.Timeline) == 0 {
		return nil
	}
	return &c.Timeline[len(c.Timeline)-1]
}
