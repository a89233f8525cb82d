package notification

import "time"

// OffersStateKey identifies the scheduler_state row of the daily offers broadcast
const OffersStateKey = "offers"

// OffersState is the persisted once-per-day marker of the offers broadcast
type OffersState struct {
	Key          string
	LastSentDate *time.Time
}

// SentOn reports whether the broadcast already ran on the civil date day
func (s OffersState) SentOn(day time.Time) bool {
	if s.LastSentDate == nil {
		return false
	}
	return s.LastSentDate.Format(time.DateOnly) == day.Format(time.DateOnly)
}

// MarkSent stamps day as the last broadcast date
func (s *OffersState) MarkSent(day time.Time) {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	s.LastSentDate = &d
}

// OfferGateOpen reports whether the broadcast may run at localNow.
// The local hour must have reached hour and the marker must not already hold today.
func OfferGateOpen(state OffersState, localNow time.Time, hour int) bool {
	if localNow.Hour() < hour {
		return false
	}
	return !state.SentOn(localNow)
}
