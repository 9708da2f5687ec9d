package interfaces

import "time"

// Scheduler exposes the state of the periodic pipeline trigger.
type Scheduler interface {
	IsScheduled() bool
	Interval() time.Duration
	NextRun() time.Time
}
