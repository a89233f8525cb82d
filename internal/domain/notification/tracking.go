// Package notification holds the reminder delivery state machine shared by every
// record that owes the owner a WhatsApp message.
package notification

import (
	"time"
	"unicode/utf8"

	"github.com/wimotos/backend/internal/domain/shared"
)

// SendStatus is the delivery state of a tracked reminder
type SendStatus string

const (
	SendStatusPending SendStatus = "PENDING"
	SendStatusSending SendStatus = "SENDING"
	SendStatusSent    SendStatus = "SENT"
	SendStatusFailed  SendStatus = "FAILED"
)

// String implements fmt.Stringer
func (s SendStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known status
func (s SendStatus) IsValid() bool {
	switch s {
	case SendStatusPending, SendStatusSending, SendStatusSent, SendStatusFailed:
		return true
	}
	return false
}

// MaxErrorLength bounds LastError, in runes
const MaxErrorLength = 500

// ErrNotEligible is returned by MarkSending when the record is in flight, already sent,
// or still inside its backoff window
var ErrNotEligible = shared.NewKindError(shared.KindInvalidTransition, "NOT_ELIGIBLE",
	"reminder is not eligible for a delivery attempt")

var backoffSchedule = []time.Duration{
	60 * time.Second,
	300 * time.Second,
	900 * time.Second,
	3600 * time.Second,
	21600 * time.Second,
}

// Backoff returns the retry delay after the given cumulative number of failures.
// tries <= 1 maps to the first step; anything past the table stays at 6h.
func Backoff(tries int) time.Duration {
	if tries < 1 {
		tries = 1
	}
	if tries > len(backoffSchedule) {
		tries = len(backoffSchedule)
	}
	return backoffSchedule[tries-1]
}

// Tracking is the delivery state of one reminder. FinanceEntry embeds one,
// Installment embeds two (due-soon and overdue).
type Tracking struct {
	Status        SendStatus
	TryCount      int
	LastError     string
	SentAt        *time.Time
	NextRetryAt   *time.Time
	LastAttemptAt *time.Time
}

// NewTracking returns a fresh PENDING tracking record
func NewTracking() Tracking {
	return Tracking{Status: SendStatusPending}
}

// CanAttempt reports whether a delivery may start at now.
// SENT is terminal and SENDING is in flight, so neither is eligible.
func (t Tracking) CanAttempt(now time.Time) bool {
	if t.Status == SendStatusSent || t.Status == SendStatusSending {
		return false
	}
	if t.NextRetryAt == nil {
		return true
	}
	return !t.NextRetryAt.After(now)
}

// MarkSending claims the record for a delivery attempt
func (t *Tracking) MarkSending(now time.Time) error {
	if !t.CanAttempt(now) {
		return ErrNotEligible
	}
	at := now.UTC()
	t.Status = SendStatusSending
	t.LastAttemptAt = &at
	return nil
}

// MarkSent records a successful delivery and clears retry state
func (t *Tracking) MarkSent(now time.Time) {
	at := now.UTC()
	t.Status = SendStatusSent
	t.SentAt = &at
	t.LastError = ""
	t.NextRetryAt = nil
}

// MarkFailed records a failed delivery and schedules the next attempt
func (t *Tracking) MarkFailed(err error, now time.Time) {
	t.TryCount++
	t.Status = SendStatusFailed
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	t.LastError = truncateRunes(msg, MaxErrorLength)
	next := now.UTC().Add(Backoff(t.TryCount))
	t.NextRetryAt = &next
}

// IsStale reports whether the record has been SENDING for longer than after
func (t Tracking) IsStale(now time.Time, after time.Duration) bool {
	if t.Status != SendStatusSending || after <= 0 {
		return false
	}
	if t.LastAttemptAt == nil {
		return true
	}
	return now.Sub(*t.LastAttemptAt) >= after
}

// ReclaimStale turns a stale SENDING record into FAILED so backoff picks it up again.
// It may cause a duplicate message if the original attempt did reach the transport.
func (t *Tracking) ReclaimStale(now time.Time, after time.Duration) bool {
	if !t.IsStale(now, after) {
		return false
	}
	t.MarkFailed(errStaleSending, now)
	return true
}

var errStaleSending = shared.NewKindError(shared.KindDeliveryFailure, "STALE_SENDING",
	"delivery outcome unknown: record was left in SENDING")

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
