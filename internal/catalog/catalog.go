// Package catalog stores the practice problems served by the catalog API.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/raysh454/promptlab/internal/logging"
)

//go:embed problems.json
var seedJSON []byte

var (
	ErrProblemNotFound = errors.New("problem not found")
	ErrInvalidProblem  = errors.New("invalid problem")
)

// Problem is one prompt-writing exercise.
type Problem struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	ExpectedOutputType string   `json:"expected_output_type"`
	SkillsRequired     []string `json:"skills_required"`
	ReferencePrompt    string   `json:"reference_prompt"`
	ReferenceResult    string   `json:"reference_result"`
	Tags               []string `json:"tags"`
}

func (p *Problem) validate() error {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProblem)
	}
	return nil
}

// Store is the problem repository behind the API. Implementations are safe
// for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (*Problem, error)
	// List returns all problems ordered by id.
	List(ctx context.Context) ([]*Problem, error)
	// Put inserts or replaces a problem.
	Put(ctx context.Context, p *Problem) error
	Close() error
}

// SeedProblems returns the built-in problem set.
func SeedProblems() ([]*Problem, error) {
	var out []*Problem
	if err := json.Unmarshal(seedJSON, &out); err != nil {
		return nil, fmt.Errorf("decode seed problems: %w", err)
	}
	return out, nil
}

type Driver string

const (
	DriverMemory Driver = "memory"
	DriverSQLite Driver = "sqlite"
)

type Config struct {
	Driver Driver `yaml:"driver"`
	// DSN is the sqlite database path.
	DSN string `yaml:"dsn"`
}

// NewStore opens the configured store and seeds it with the built-in problems
// when it is empty.
func NewStore(ctx context.Context, cfg Config, logger logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.Field{Key: "component", Value: "catalog"})

	var (
		s   Store
		err error
	)
	switch Driver(strings.ToLower(string(cfg.Driver))) {
	case "", DriverMemory:
		s = NewMemoryStore()
	case DriverSQLite:
		s, err = OpenSQLiteStore(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := seed(ctx, s, logger); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func seed(ctx context.Context, s Store, logger logging.Logger) error {
	existing, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("list problems: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	problems, err := SeedProblems()
	if err != nil {
		return err
	}
	for _, p := range problems {
		if err := s.Put(ctx, p); err != nil {
			return fmt.Errorf("seed problem %s: %w", p.ID, err)
		}
	}
	logger.Info("seeded catalog", logging.Field{Key: "count", Value: len(problems)})
	return nil
}
