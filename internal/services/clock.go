// internal/services/clock.go
package services

import (
	"time"

	"github.com/javajoker/atelier-backend/internal/workflow"
)

// Clock supplies "today" in the atelier's timezone. The zero value uses the
// wall clock and UTC.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

// Today is the current civil date as midnight UTC.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return workflow.Today(now(), loc)
}
