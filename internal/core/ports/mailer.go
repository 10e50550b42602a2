package ports

import "context"

// Mailer delivers transactional mail. Implementations must be safe for
// concurrent use; the lifecycle services treat delivery failure as a signal,
// never as a reason to roll back a committed mutation.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
