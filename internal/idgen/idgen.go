// Package idgen generates the human-facing complaint identifiers shown to
// citizens, e.g. "REX20260001". Identifiers are assigned once at creation
// and never change.
package idgen

import (
	"fmt"
	"time"
)

// Prefix of every human-facing complaint identifier.
const Prefix = "REX"

// YearCounter counts complaints already created in a calendar year.
type YearCounter interface {
	CountComplaintsInYear(year int) (int64, error)
}

// Next builds the identifier for the next complaint of now's year:
// Prefix + 4-digit year + zero-padded sequence. Counting then formatting is
// racy under concurrent creation, so callers must treat a duplicate-key
// error on insert as a signal to retry with Fallback.
func Next(counter YearCounter, now time.Time) (string, error) {
	year := now.UTC().Year()
	count, err := counter.CountComplaintsInYear(year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d%04d", Prefix, year, count+1), nil
}

// Fallback returns a timestamp-derived identifier that is unique without
// coordination. Sequential density is lost but creation never fails on an
// id collision.
func Fallback(now time.Time) string {
	return fmt.Sprintf("%s%d", Prefix, now.UnixMilli())
}
