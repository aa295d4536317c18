package domain

import "time"

// RetryPolicy bounds how often an orchestrator may retry a unit of work and
// how long it pauses between attempts. Policies are built once at startup
// from configuration and passed by value; they are never persisted.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Normalize returns a policy with sane lower bounds applied.
func (p RetryPolicy) Normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}
