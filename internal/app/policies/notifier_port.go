package policies

import "context"

// Notifier delivers fire-and-forget notifications after successful state
// transitions. A delivery failure must never roll back a booking transition;
// callers log it and move on.
type Notifier interface {
	Notify(ctx context.Context, userID string, event string, payload any) error
}

// NopNotifier discards notifications; used in tests.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, userID string, event string, payload any) error {
	return nil
}
