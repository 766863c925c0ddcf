package service

import "context"

// FallbackNotifier asks the server to take over delivery for reminders the
// device may have missed, typically by sending an email. The response body
// is informational only; the reconciliation pass clears its local
// bookkeeping regardless of what the server answers.
type FallbackNotifier interface {
	CheckEmailFallback(ctx context.Context, bearer string) error
}
