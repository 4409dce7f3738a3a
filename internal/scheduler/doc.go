// Package scheduler is the in-process half of the wake-up scheduler: a single
// goroutine over a min-heap of Events sorted by trigger time, with a
// 60-second max-sleep cap so NTP steps and host suspend only delay a wake-up
// by at most one cap interval.
//
// Events are keyed; adding an event whose Key is already queued replaces the
// queued one. The package does not persist anything: callers rebuild the heap
// from their durable registrations with Recover on startup.
package scheduler
