package pagichat

import "time"

// Store persists the identity pair across process restarts. A missing key
// yields ("", nil), not an error.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Scheduler runs a function once after a delay. The returned cancel stops the
// pending run; calling it after the function fired is a no-op.
//
// The client uses it only for the reconnect timer, which keeps the retry
// policy testable without real clocks.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
