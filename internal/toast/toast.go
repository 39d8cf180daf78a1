// Package toast implements the in-process notification store shared by the
// web and terminal frontends.
//
// A Manager owns an ordered collection of active toasts. Mutation goes
// through three operations (Show, Dismiss, DismissAll); renderers observe the
// collection through Subscribe or read it with Toasts. Toasts with a positive
// duration are removed automatically by a one-shot timer; a zero duration
// marks the toast sticky, removed only by explicit action.
//
// Design Philosophy:
//   - The Manager is an explicit dependency, never ambient global state.
//     The composition root constructs one and injects it where needed.
//   - Every pending auto-dismiss timer is a cancellable handle stored next
//     to its entry; dismissal and eviction always cancel it.
package toast

import (
	"time"
)

// Severity classifies a toast for display.
type Severity string

// Recognized severities. Anything else is normalized to SeverityInfo.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// valid reports whether s is one of the recognized severities.
func (s Severity) valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// Toast is a single notification. Fields are immutable after creation.
type Toast struct {
	// ID uniquely identifies the toast among active entries. IDs are never
	// reused, so a stale ID is always safe to Dismiss.
	ID string

	// Message is the display text, accepted as-is from the caller.
	Message string

	// Severity defaults to SeverityInfo.
	Severity Severity

	// CreatedAt is the creation timestamp, used for display ordering and
	// countdown rendering.
	CreatedAt time.Time

	// Duration is the auto-dismiss delay. Zero means sticky.
	Duration time.Duration
}

// Sticky reports whether the toast has no auto-dismiss timer.
func (t Toast) Sticky() bool {
	return t.Duration == 0
}

// ExpiresAt returns the zero time for sticky toasts, otherwise the instant
// the auto-dismiss timer fires.
func (t Toast) ExpiresAt() time.Time {
	if t.Sticky() {
		return time.Time{}
	}
	return t.CreatedAt.Add(t.Duration)
}

// Option configures a single Show call.
type Option func(*showOptions)

type showOptions struct {
	severity Severity
	duration time.Duration
}

// WithSeverity sets the toast severity. Unrecognized values fall back to
// SeverityInfo.
func WithSeverity(s Severity) Option {
	return func(o *showOptions) {
		o.severity = s
	}
}

// WithDuration overrides the manager's default auto-dismiss delay.
// Zero makes the toast sticky.
func WithDuration(d time.Duration) Option {
	return func(o *showOptions) {
		o.duration = d
	}
}

// Sticky is shorthand for WithDuration(0).
func Sticky() Option {
	return WithDuration(0)
}
