package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/raysh454/promptlab/internal/logging"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps problems in a SQLite database. List-valued columns are
// stored as JSON arrays.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenSQLiteStore opens (creating if needed) the database at path and
// applies the schema. ":memory:" gives a private in-memory database.
func OpenSQLiteStore(ctx context.Context, path string, logger logging.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite catalog requires a dsn")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure catalog dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	logger.Debug("opened sqlite catalog", logging.Field{Key: "dsn", Value: path})
	return &SQLiteStore{db: db, logger: logger}, nil
}

const problemColumns = `id, title, description, expected_output_type, skills_required, reference_prompt, reference_result, tags`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProblem(row rowScanner) (*Problem, error) {
	var (
		p            Problem
		skills, tags string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ExpectedOutputType,
		&skills, &p.ReferencePrompt, &p.ReferenceResult, &tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(skills), &p.SkillsRequired); err != nil {
		return nil, fmt.Errorf("decode skills_required of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", p.ID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Problem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE id = ?`, id)
	p, err := scanProblem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProblemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get problem %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Problem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+problemColumns+` FROM problems ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var out []*Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Put(ctx context.Context, p *Problem) error {
	if err := p.validate(); err != nil {
		return err
	}
	skills, err := json.Marshal(nonNil(p.SkillsRequired))
	if err != nil {
		return fmt.Errorf("encode skills_required: %w", err)
	}
	tags, err := json.Marshal(nonNil(p.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO problems (`+problemColumns+`, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    description = excluded.description,
    expected_output_type = excluded.expected_output_type,
    skills_required = excluded.skills_required,
    reference_prompt = excluded.reference_prompt,
    reference_result = excluded.reference_result,
    tags = excluded.tags,
    updated_at = excluded.updated_at`,
		p.ID, p.Title, p.Description, p.ExpectedOutputType, string(skills),
		p.ReferencePrompt, p.ReferenceResult, string(tags),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put problem %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
