package entity

import "time"

// PendingTrigger records a locally scheduled notification that has not yet
// been confirmed delivered or acted upon. Its presence in the pending set
// means "scheduled, awaiting confirmation"; it is removed when the user
// acknowledges the notification, when the reconciliation pass resolves it,
// or on explicit cancel.
type PendingTrigger struct {
	ID string `json:"id"`

	// Timestamp is the intended fire time in epoch milliseconds, matching
	// the persisted wire format.
	Timestamp int64 `json:"timestamp"`
}

// FireTime returns the intended fire time as a time.Time.
func (t PendingTrigger) FireTime() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// OverdueBy reports how far past the intended fire time the given instant is.
// Negative values mean the trigger has not fired yet.
func (t PendingTrigger) OverdueBy(now time.Time) time.Duration {
	return now.Sub(t.FireTime())
}
