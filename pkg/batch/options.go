package batch

import "time"

// Options configures the batch runner's behavior.
type Options struct {
	// Concurrency is the maximum number of sessions to drive in parallel.
	Concurrency int

	// Timeout is the overall timeout for the whole batch.
	Timeout time.Duration

	// SessionTimeout is the maximum time allowed for a single session,
	// from Start through Finish.
	SessionTimeout time.Duration
}

// DefaultOptions returns batch runner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Concurrency:    5,
		Timeout:        30 * time.Minute,
		SessionTimeout: 5 * time.Minute,
	}
}
