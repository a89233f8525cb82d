package shared

import (
	"time"

	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/domain/shared"
)

// ReminderResponse is the delivery state of a reminder in API responses
type ReminderResponse struct {
	Status        string     `json:"status"`
	TryCount      int        `json:"try_count"`
	LastError     string     `json:"last_error,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
}

// ToReminderResponse converts a tracking record
func ToReminderResponse(t notification.Tracking) ReminderResponse {
	return ReminderResponse{
		Status:        t.Status.String(),
		TryCount:      t.TryCount,
		LastError:     t.LastError,
		SentAt:        t.SentAt,
		NextRetryAt:   t.NextRetryAt,
		LastAttemptAt: t.LastAttemptAt,
	}
}

// ListQuery is the limit/offset window of list endpoints
type ListQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Window converts the query, defaulting the limit to 50
func (q ListQuery) Window() shared.Window {
	return shared.Window{Limit: q.Limit, Offset: q.Offset}.Normalize()
}
