package models

import (
	"time"

	"github.com/wimotos/backend/internal/domain/notification"
)

// SchedulerStateModel holds per-job markers of the background worker, keyed by job name.
type SchedulerStateModel struct {
	Key          string     `gorm:"primaryKey;type:varchar(32)"`
	LastSentDate *time.Time `gorm:"type:date"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime:false"`
}

// TableName returns the table name for GORM
func (SchedulerStateModel) TableName() string {
	return "scheduler_state"
}

// ToDomain converts the row to the offers marker
func (m *SchedulerStateModel) ToDomain() *notification.OffersState {
	s := &notification.OffersState{Key: m.Key}
	if m.LastSentDate != nil {
		d := dateUTC(*m.LastSentDate)
		s.LastSentDate = &d
	}
	return s
}

// SchedulerStateModelFromDomain creates the row for an offers marker
func SchedulerStateModelFromDomain(s *notification.OffersState, now time.Time) *SchedulerStateModel {
	m := &SchedulerStateModel{Key: s.Key, UpdatedAt: now.UTC()}
	if s.LastSentDate != nil {
		d := dateUTC(*s.LastSentDate)
		m.LastSentDate = &d
	}
	return m
}
