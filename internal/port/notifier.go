package port

import "context"

type Notifier interface {
	// Error delivers a user-facing failure message; delivery is best effort
	Error(ctx context.Context, message string)
}
