// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/promptlab/internal/logging"
	"github.com/raysh454/promptlab/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of warnings recorded so far.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// It answers every request with Status and Body (200 and "{}" when unset),
// or with Err when that is non-nil. Release, when non-nil, holds each
// request until a value is received from it or the context ends.
type DummyWebClient struct {
	Status  int
	Body    string
	Err     error
	Release chan struct{}

	mu       sync.Mutex
	Requests []*webclient.Request
	closed   bool
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if req == nil {
		return nil, webclient.ErrNilRequest
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.Release != nil {
		select {
		case <-d.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if d.Err != nil {
		return nil, d.Err
	}
	status := d.Status
	if status == 0 {
		status = http.StatusOK
	}
	body := d.Body
	if body == "" {
		body = "{}"
	}
	return &webclient.Response{
		Request:    req,
		Headers:    http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(body),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: url})
}

func (d *DummyWebClient) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("already closed")
	}
	d.closed = true
	return nil
}

// RequestCount returns the number of requests seen so far.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// LastRequest returns the most recent request, or nil.
func (d *DummyWebClient) LastRequest() *webclient.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Requests) == 0 {
		return nil
	}
	return d.Requests[len(d.Requests)-1]
}
