package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options contains backend-specific options like "wait_selector" for chromedp
	Options map[string]string
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
