package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level. Unknown
// values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// StdoutLogger is a tiny, structured logger.
// It implements Logger and prints JSON lines to its writer (stdout by default).
type StdoutLogger struct {
	component string
	min       Level
	fields    []Field

	mu  *sync.Mutex
	out io.Writer
}

// NewStdoutLogger creates a new StdoutLogger at info level. component is
// optional and is included in every line.
func NewStdoutLogger(component string) *StdoutLogger {
	return NewLogger(component, os.Stdout, LevelInfo)
}

// NewLogger creates a StdoutLogger writing to w and dropping entries below min.
func NewLogger(component string, w io.Writer, min Level) *StdoutLogger {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutLogger{component: component, min: min, mu: &sync.Mutex{}, out: w}
}

func (s *StdoutLogger) log(level Level, msg string, fields ...Field) {
	if level < s.min {
		return
	}
	type outEntry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any, len(s.fields)+len(fields))
	for _, f := range s.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	entry := outEntry{
		Level:     level.String(),
		Msg:       msg,
		Component: s.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	enc, err := json.Marshal(entry)
	if err != nil {
		// Fallback simple formatting if JSON marshal fails
		fmt.Fprintf(s.out, "%s %s %v\n", level, msg, m)
		return
	}
	fmt.Fprintln(s.out, string(enc))
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.log(LevelDebug, msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.log(LevelInfo, msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.log(LevelWarn, msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.log(LevelError, msg, fields...)
}

// With returns a child logger. A "component" field renames the child's
// component; every other field is carried on each line the child writes.
func (s *StdoutLogger) With(fields ...Field) Logger {
	child := &StdoutLogger{
		component: s.component,
		min:       s.min,
		fields:    append([]Field(nil), s.fields...),
		mu:        s.mu,
		out:       s.out,
	}
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
				continue
			}
		}
		child.fields = append(child.fields, f)
	}
	return child
}
