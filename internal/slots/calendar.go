package slots

import (
	"context"
	"log/slog"
	"time"

	"github.com/WidgetWorks/ChatFlow/internal/models"
)

// LockFetcher retrieves the slot-lock map for one calendar date. Implemented
// by the backend client; faked in tests.
type LockFetcher interface {
	GetSlotLocks(ctx context.Context, date string) (models.SlotLocksResponse, error)
}

// Option is one renderable slot for a selected date: the catalog window
// annotated with its lock status.
type Option struct {
	Label      string
	StartLocal time.Time
	Key        string
	// Booked means the slot is locked and must not be selectable.
	Booked bool
	// StatusKnown is false when the lock fetch failed; every slot is then
	// rendered selectable with no booked/available badge.
	StatusKnown bool
}

// Calendar annotates the fixed slot catalog with backend lock status.
type Calendar struct {
	fetcher LockFetcher
	loc     *time.Location
}

// NewCalendar creates a Calendar resolving slots in the given location.
// A nil location falls back to time.Local.
func NewCalendar(fetcher LockFetcher, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{fetcher: fetcher, loc: loc}
}

// Location returns the wall-clock location slots are materialized in.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// OptionsFor resolves date to the four catalog windows with booked/available
// status. A failed lock fetch degrades gracefully: all slots come back
// selectable with StatusKnown=false rather than blocking the picker.
func (c *Calendar) OptionsFor(ctx context.Context, date time.Time) []Option {
	opts := make([]Option, 0, len(Catalog))
	locks, err := c.fetcher.GetSlotLocks(ctx, DateParam(date))
	known := err == nil
	if err != nil {
		slog.Warn("Calendar lock fetch failed, treating availability as unknown", "error", err, "date", DateParam(date))
	}

	for _, d := range Catalog {
		start := d.StartTime(date, c.loc)
		key := Key(start)
		opt := Option{
			Label:       d.Label,
			StartLocal:  start,
			Key:         key,
			StatusKnown: known,
		}
		if known {
			status, locked := locks.Locks[key]
			opt.Booked = locked && status != models.SlotStatusCancelled
		}
		opts = append(opts, opt)
	}

	slog.Debug("Calendar resolved slot options", "date", DateParam(date), "statusKnown", known)
	return opts
}
