package loader

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

var (
	// ErrEmptyBody is returned by Render for a body with no JSON value.
	ErrEmptyBody = errors.New("empty response body")

	// ErrInvalidUTF8 is returned by Render for a body that is not UTF-8 text.
	ErrInvalidUTF8 = errors.New("response body is not valid UTF-8")
)

// Outcome is the result of one invocation. Exactly one of Payload and Err
// is meaningful.
type Outcome struct {
	Mode       string
	URL        string
	StatusCode int

	// Payload is the indented JSON text.
	Payload []byte
	Err     error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Text is what an output area shows for this outcome.
func (o Outcome) Text() string {
	if o.Err != nil {
		return ErrorPrefix + o.Err.Error()
	}
	return string(o.Payload)
}

// Render validates body as a single JSON value and indents it by two spaces,
// keeping member order and number text as sent.
func Render(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	if !utf8.Valid(body) {
		return "", ErrInvalidUTF8
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("parse JSON response: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return "", fmt.Errorf("indent JSON response: %w", err)
	}
	return buf.String(), nil
}
