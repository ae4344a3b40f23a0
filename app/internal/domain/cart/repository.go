package cart

import "context"

// Repository keeps one cart per shopping session. Update runs fn with
// exclusive access to the session's cart and returns fn's error.
type Repository interface {
	Create(ctx context.Context, sessionID string) error
	Update(ctx context.Context, sessionID string, fn func(c *Cart) error) error
	Delete(ctx context.Context, sessionID string) error
}
