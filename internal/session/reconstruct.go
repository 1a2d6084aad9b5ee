// Package session folds a forward event stream into uptime windows and the
// player sessions they contain.
package session

import (
	"context"

	"github.com/minelog/minelog/internal/domain"
	"github.com/minelog/minelog/internal/logdir"
)

// Reconstructor is the uptime-window state machine. Feed it events in
// chronological order, then call Finish to flush the still-open window.
type Reconstructor struct {
	current *domain.UptimeWindow
	windows []domain.UptimeWindow
}

// New creates an empty Reconstructor
func New() *Reconstructor {
	return &Reconstructor{}
}

// Feed advances the state machine by one event. Event types without session
// meaning are ignored.
func (r *Reconstructor) Feed(ev domain.Event) {
	switch ev.Type {
	case domain.EventStart:
		r.close(ev, domain.LeaveServerStartOverride)
		r.current = &domain.UptimeWindow{
			StartTime: domain.NewTimestamp(ev.Time),
			Version:   ev.Version,
		}
	case domain.EventRestart:
		// legacy boundary: one marker both ends the previous uptime and
		// begins the next, with no version information
		r.close(ev, domain.LeaveRestart)
		r.current = &domain.UptimeWindow{
			StartTime: domain.NewTimestamp(ev.Time),
		}
	case domain.EventStop:
		r.close(ev, domain.LeaveServerStop)
	case domain.EventJoin:
		if r.current == nil {
			return
		}
		r.current.Sessions = append(r.current.Sessions, domain.Session{
			JoinTime: domain.NewTimestamp(ev.Time),
			Person:   ev.Player.String(),
		})
	case domain.EventLeave:
		if r.current == nil {
			return
		}
		// close the oldest dangling session for this player; a leave with
		// no matching join is silently dropped
		for i := range r.current.Sessions {
			s := &r.current.Sessions[i]
			if s.LeaveTime == nil && s.Person == ev.Player.String() {
				at := domain.NewTimestamp(ev.Time)
				s.LeaveTime = &at
				s.LeaveReason = domain.LeaveLogout
				break
			}
		}
	}
}

// close ends the open window at ev.Time, forcing reason onto every session
// that never saw a leave line
func (r *Reconstructor) close(ev domain.Event, reason domain.LeaveReason) {
	if r.current == nil {
		return
	}
	at := domain.NewTimestamp(ev.Time)
	r.current.EndTime = &at
	for i := range r.current.Sessions {
		s := &r.current.Sessions[i]
		if s.LeaveTime == nil {
			s.LeaveTime = &at
			s.LeaveReason = reason
		}
	}
	r.windows = append(r.windows, *r.current)
	r.current = nil
}

// Finish flushes the still-open window, if any, and returns all windows.
// Sessions in the open window that never left are marked currentlyOnline and
// keep a nil leave time.
func (r *Reconstructor) Finish() []domain.UptimeWindow {
	if r.current != nil {
		for i := range r.current.Sessions {
			s := &r.current.Sessions[i]
			if s.LeaveTime == nil {
				s.LeaveReason = domain.LeaveCurrentlyOnline
			}
		}
		r.windows = append(r.windows, *r.current)
		r.current = nil
	}
	windows := r.windows
	r.windows = nil
	return windows
}

// Reconstruct reads a world's full log history and returns its uptime
// windows
func Reconstruct(ctx context.Context, reader *logdir.Reader) ([]domain.UptimeWindow, error) {
	rec := New()
	if err := reader.Events(ctx, func(ev domain.Event) error {
		rec.Feed(ev)
		return nil
	}); err != nil {
		return nil, err
	}
	return rec.Finish(), nil
}
