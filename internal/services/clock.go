package services

import (
	"time"
)

// Clock supplies the current time. Grant expiry and schedule validation go
// through it so tests can pin the clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
