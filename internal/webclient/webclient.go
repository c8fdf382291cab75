package webclient

import (
	"context"
)

// WebClient executes a single HTTP exchange. Implementations must be safe
// for concurrent use.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
