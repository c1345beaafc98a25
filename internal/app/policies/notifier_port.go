package policies

import "context"

// Notifier delivers a conversation change to one participant. Implementations
// are transport specific (push, polling hint, email); the core only emits.
type Notifier interface {
	Send(ctx context.Context, to string, event string, data any) error
}
