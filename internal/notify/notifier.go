// Package notify delivers mutation events to out-of-process observers.
//
// Delivery is best-effort by contract: the structured store is the source
// of truth and an observer that misses a live update reconciles on its next
// full-state fetch, so no implementation may ever block the writer or
// surface a delivery failure to it.
package notify

import "log/slog"

// Notifier fans one mutation event out to observers. Publish must never
// return an error for delivery problems and must be bounded in time;
// Close releases held connection resources.
type Notifier interface {
	Publish(event string, payload any, boardID string)
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(event string, payload any, boardID string) {}

func (Nop) Close() error { return nil }

// Callback delivers events synchronously to in-process functions. Panics in
// a callback are recovered so a misbehaving observer cannot crash a writer.
type Callback struct {
	fns []func(event string, payload any, boardID string)
}

// NewCallback creates a callback notifier over the given functions.
func NewCallback(fns ...func(event string, payload any, boardID string)) *Callback {
	return &Callback{fns: fns}
}

// Add registers another observer function.
func (c *Callback) Add(fn func(event string, payload any, boardID string)) {
	c.fns = append(c.fns, fn)
}

func (c *Callback) Publish(event string, payload any, boardID string) {
	for _, fn := range c.fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Debug("notify callback panicked", "event", event, "panic", r)
				}
			}()
			fn(event, payload, boardID)
		}()
	}
}

func (c *Callback) Close() error { return nil }
