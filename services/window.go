package services

import (
	"fmt"
	"os"
	"time"

	"github.com/kasalashiva/temple-meals/models"
	"github.com/kasalashiva/temple-meals/utils"
)

const (
	// DateLayout is the wire format for temple-local calendar dates.
	DateLayout = "2006-01-02"

	// cutoffHour: next-day single bookings close strictly after 16:00 temple time.
	cutoffHour = 16

	// EditWindow is how long a request stays self-editable after creation.
	EditWindow = 10 * time.Minute
)

// Clock isolates "now" so cutoff and edit-window logic is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// BookingWindow decides when a new request may be created and how long an
// existing one stays editable. All timestamps are stored in UTC; the cutoff
// is evaluated against the temple's local wall clock.
type BookingWindow struct {
	clock Clock
	loc   *time.Location
}

// NewBookingWindow loads the temple timezone from TEMPLE_TZ (IANA name,
// default Asia/Kolkata). If the zone database is unavailable it falls back to
// a fixed +05:30 offset, which is an approximation that ignores any DST rules.
func NewBookingWindow(clock Clock) *BookingWindow {
	tz := os.Getenv("TEMPLE_TZ")
	if tz == "" {
		tz = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("Cannot load timezone %q (%v), falling back to fixed IST offset", tz, err)
		}
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &BookingWindow{clock: clock, loc: loc}
}

// Location returns the temple timezone.
func (w *BookingWindow) Location() *time.Location { return w.loc }

// NowUTC returns the current instant in UTC. Creation timestamps must come
// from here so the edit window and the cutoff share one clock.
func (w *BookingWindow) NowUTC() time.Time { return w.clock.Now().UTC() }

// PastDailyCutoff reports whether the temple-local time of day is strictly
// after 16:00:00. Exactly 16:00:00.000 is not past cutoff.
func (w *BookingWindow) PastDailyCutoff() bool {
	now := w.clock.Now().In(w.loc)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), cutoffHour, 0, 0, 0, w.loc)
	return now.After(cutoff)
}

// NextLocalDate returns tomorrow's date in the temple's local calendar,
// independent of the cutoff check.
func (w *BookingWindow) NextLocalDate() string {
	today := w.clock.Now().In(w.loc)
	return today.AddDate(0, 0, 1).Format(DateLayout)
}

// ExpandRange expands an inclusive from/to date pair into the ascending
// contiguous daily sequence. A reversed range yields an empty sequence,
// never an auto-corrected one.
func (w *BookingWindow) ExpandRange(fromDate, toDate string) ([]string, error) {
	from, err := time.ParseInLocation(DateLayout, fromDate, w.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid from_date %q: must be YYYY-MM-DD", fromDate)
	}
	to, err := time.ParseInLocation(DateLayout, toDate, w.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid to_date %q: must be YYYY-MM-DD", toDate)
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// EditableUntil computes the fixed edit window deadline for a request.
func (w *BookingWindow) EditableUntil(createdAt time.Time) time.Time {
	return createdAt.Add(EditWindow)
}

// Editable reports whether the owner may still self-edit the request:
// status must still be requested and now must not be past editable_until
// (the deadline instant itself is still editable).
func (w *BookingWindow) Editable(m *models.MealRequest) bool {
	if m.MealStatus != models.MealRequested {
		return false
	}
	return !w.clock.Now().After(m.EditableUntil)
}
