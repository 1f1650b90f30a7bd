package pipeline

import "time"

// SetBackoff overrides the retry delays so tests do not sleep.
func (p *Publisher) SetBackoff(initial, maxBackoff time.Duration) {
	p.backoff = initial
	p.maxBackoff = maxBackoff
}
