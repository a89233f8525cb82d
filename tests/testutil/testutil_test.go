package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t)

	assert.True(t, db.Migrator().HasTable("installments"))
	assert.True(t, db.Migrator().HasTable("scheduler_state"))
}

func TestClock(t *testing.T) {
	start := time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)
	c := NewClock(start)
	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())
	c.Set(start)
	assert.Equal(t, start, c.Now())
}
