// Package loader fetches a practice problem from the catalog API for the
// currently selected mode and renders the JSON response, or the failure, into
// an output area.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/raysh454/promptlab/internal/logging"
	"github.com/raysh454/promptlab/internal/webclient"
)

const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultProblemID = "story_001"

	// ErrorPrefix starts every rendered failure.
	ErrorPrefix = "❌ Error: "

	// RequestIDHeader carries the per-invocation id to the API.
	RequestIDHeader = "X-Request-ID"
)

// ModeSource yields the current value of the mode selector.
type ModeSource interface {
	Mode() string
}

// Display is an output area. SetText replaces everything shown before.
type Display interface {
	SetText(text string)
}

type Config struct {
	BaseURL   string `yaml:"base_url"`
	ProblemID string `yaml:"problem_id"`

	// FailOnStatus renders non-2xx responses as failures. When false the
	// status is ignored and any JSON body is rendered.
	FailOnStatus bool `yaml:"fail_on_status"`
}

// Loader performs fetch-and-render for one problem.
type Loader struct {
	cfg    Config
	client webclient.WebClient
	modes  ModeSource
	out    Display
	logger logging.Logger
}

// New returns a Loader reading the mode from modes and rendering into out.
func New(cfg Config, client webclient.WebClient, modes ModeSource, out Display, logger logging.Logger) (*Loader, error) {
	if client == nil {
		return nil, errors.New("loader: web client is required")
	}
	if modes == nil {
		return nil, errors.New("loader: mode source is required")
	}
	if out == nil {
		return nil, errors.New("loader: display is required")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.ProblemID) == "" {
		cfg.ProblemID = DefaultProblemID
	}
	if _, err := ProblemURL(cfg.BaseURL, cfg.ProblemID, ""); err != nil {
		return nil, err
	}

	return &Loader{
		cfg:    cfg,
		client: client,
		modes:  modes,
		out:    out,
		logger: logger.With(logging.Field{Key: "component", Value: "loader"}),
	}, nil
}

// Load reads the current mode, fetches the problem and writes exactly one
// text to the display: the indented payload or ErrorPrefix plus the failure.
// It blocks until the request completes or ctx ends.
func (l *Loader) Load(ctx context.Context) Outcome {
	o := l.Fetch(ctx, l.modes.Mode())
	l.out.SetText(o.Text())
	return o
}

// Fetch requests the problem for mode without touching the display.
func (l *Loader) Fetch(ctx context.Context, mode string) Outcome {
	reqID := uuid.NewString()
	logger := l.logger.With(
		logging.Field{Key: "request_id", Value: reqID},
		logging.Field{Key: "mode", Value: mode},
	)

	o := Outcome{Mode: mode}
	o.URL, o.Err = ProblemURL(l.cfg.BaseURL, l.cfg.ProblemID, mode)
	if o.Err != nil {
		return l.fail(logger, o)
	}

	headers := http.Header{}
	headers.Set(RequestIDHeader, reqID)
	headers.Set("Accept", "application/json")

	resp, err := l.client.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     o.URL,
		Headers: headers,
	})
	if err != nil {
		o.Err = err
		return l.fail(logger, o)
	}
	o.StatusCode = resp.StatusCode

	if l.cfg.FailOnStatus && !resp.IsSuccess() {
		o.Err = &StatusError{Code: resp.StatusCode}
		return l.fail(logger, o)
	}

	text, err := Render(resp.Body)
	if err != nil {
		o.Err = err
		return l.fail(logger, o)
	}
	o.Payload = []byte(text)

	logger.Info("problem loaded",
		logging.Field{Key: "url", Value: o.URL},
		logging.Field{Key: "status", Value: o.StatusCode})
	return o
}

func (l *Loader) fail(logger logging.Logger, o Outcome) Outcome {
	logger.Warn("problem load failed",
		logging.Field{Key: "url", Value: o.URL},
		logging.Field{Key: "status", Value: o.StatusCode},
		logging.Field{Key: "error", Value: o.Err.Error()})
	return o
}

// ProblemURL builds <base>/api/problems/<problemID>?mode=<mode>. The problem
// id is path-escaped and the mode query-encoded.
func ProblemURL(base, problemID, mode string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", base)
	}
	if problemID == "" {
		return "", errors.New("problem id is required")
	}
	u = u.JoinPath("api", "problems", url.PathEscape(problemID))
	u.RawQuery = url.Values{"mode": {mode}}.Encode()
	return u.String(), nil
}

// StatusError reports a non-2xx response when FailOnStatus is set.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}
