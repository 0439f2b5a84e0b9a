package core

import "time"

// Host is the GUI side the pipeline runs on: a single task queue with UI
// affinity plus a display density query. Every pipeline state transition is
// a task posted to this queue.
type Host interface {
	// Post schedules task to run on the queue. It never runs task inline.
	Post(task func())

	// PostDelayed schedules task to run on the queue after delay.
	PostDelayed(task func(), delay time.Duration)

	// Density is the factor converting CSS pixels to device pixels.
	Density() float64
}
