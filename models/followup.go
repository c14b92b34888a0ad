// ABOUTME: Calendar helpers and follow-up categorisation
// ABOUTME: Pure read-time computations over local midnight boundaries
package models

import "time"

// FollowUpStatus is derived at read time, never stored.
type FollowUpStatus string

const (
	FollowUpOpen      FollowUpStatus = "open"
	FollowUpOverdue   FollowUpStatus = "overdue"
	FollowUpCompleted FollowUpStatus = "completed"
)

// LocalMidnight returns 00:00 of t's calendar day in t's location.
func LocalMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameLocalDay reports whether a and b fall on the same calendar date in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// FromMillis converts epoch milliseconds to a time in loc.
func FromMillis(ms int64, loc *time.Location) time.Time {
	return time.UnixMilli(ms).In(loc)
}

// CategorizeFollowUp computes the status relative to now's local midnight.
// Overdue means the due date is strictly before today and not completed.
func CategorizeFollowUp(f FollowUp, now time.Time) FollowUpStatus {
	if f.Completed {
		return FollowUpCompleted
	}
	today := LocalMidnight(now).UnixMilli()
	if f.DueDate < today {
		return FollowUpOverdue
	}
	return FollowUpOpen
}

// FollowUpView joins a follow-up with its live contact.
type FollowUpView struct {
	FollowUp
	ContactName string         `json:"contactName"`
	Phone       string         `json:"phone"`
	Status      FollowUpStatus `json:"status"`
}
