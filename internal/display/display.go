// Package display holds the output areas and mode sources the problem loader
// reads from and writes to. Every output area replaces its whole content on
// each SetText and is safe for concurrent use; concurrent writers race and
// the last write wins.
package display

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/raysh454/promptlab/internal/logging"
)

// TextArea keeps the current text in memory.
type TextArea struct {
	mu     sync.RWMutex
	text   string
	writes int
}

func (a *TextArea) SetText(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.text = text
	a.writes++
}

// Text returns the current content.
func (a *TextArea) Text() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text
}

// Writes returns how many times SetText was called.
func (a *TextArea) Writes() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.writes
}

// WriterDisplay renders each text as its own block on w, e.g. a terminal.
type WriterDisplay struct {
	mu     sync.Mutex
	w      io.Writer
	logger logging.Logger
	err    error
}

func NewWriterDisplay(w io.Writer, logger logging.Logger) *WriterDisplay {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &WriterDisplay{w: w, logger: logger}
}

func (d *WriterDisplay) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, d.err = fmt.Fprintln(d.w, text)
	if d.err != nil {
		d.logger.Warn("write display", logging.Field{Key: "error", Value: d.err.Error()})
	}
}

// Err returns the error of the most recent SetText, or nil.
func (d *WriterDisplay) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// FileDisplay rewrites a file on every SetText. The new content, followed by
// a newline, is written to a temporary sibling and renamed over the target,
// so readers never see a partial write. Missing parent directories are
// created.
type FileDisplay struct {
	mu     sync.Mutex
	path   string
	logger logging.Logger
	err    error
}

func NewFileDisplay(path string, logger logging.Logger) *FileDisplay {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &FileDisplay{path: path, logger: logger.With(logging.Field{Key: "path", Value: path})}
}

func (d *FileDisplay) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = d.replace(text + "\n")
	if d.err != nil {
		d.logger.Error("write display file", logging.Field{Key: "error", Value: d.err.Error()})
	}
}

// Err returns the error of the most recent SetText, or nil.
func (d *FileDisplay) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *FileDisplay) replace(content string) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.WriteString(tmp, content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
