package execution

import "time"

// Ticker delivers the one-second clock that drives a controller.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

// NewTicker returns a Ticker backed by time.Ticker.
func NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// SecondTicker is the default ticker factory.
func SecondTicker() Ticker {
	return NewTicker(time.Second)
}
