package session

import "context"

// Notifier surfaces user-visible session notices. The gateway de-duplicates
// expiry notices, so implementations can display them without their own
// throttling.
type Notifier interface {
	SessionExpired(ctx context.Context, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) SessionExpired(ctx context.Context, message string) {
	if f == nil {
		return
	}
	f(ctx, message)
}

type noopNotifier struct{}

func (noopNotifier) SessionExpired(context.Context, string) {}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
