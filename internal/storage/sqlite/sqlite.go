package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
	"github.com/slok/activator/internal/storage/sqlite/migrations"
)

var _ storage.StepRepository = (*Repository)(nil)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.StepRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository opens the database, creating it if missing, and applies the migrations.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// DB returns the database connection so other repositories can share it.
func (r *Repository) DB() *sql.DB { return r.db }

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// UpsertStep stores a step, replacing the stored one with the same ID.
func (r *Repository) UpsertStep(ctx context.Context, s model.Step) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid step: %w", err)
	}

	actions, stepErrors, err := marshalStep(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO steps (id, title, status, actions, errors, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			actions = excluded.actions,
			errors = excluded.errors,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, s.ID, s.Title, s.Status, actions, stepErrors, unixOrNull(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("could not upsert step: %w", err)
	}

	r.logger.Debugf("Stored step in repository: %s", s.ID)
	return nil
}

// GetStep retrieves a step by ID.
func (r *Repository) GetStep(ctx context.Context, id string) (*model.Step, error) {
	query := `
		SELECT id, title, status, actions, errors, updated_at
		FROM steps
		WHERE id = ?
	`

	step, err := scanStep(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("step %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query step: %w", err)
	}

	return &step, nil
}

// ListSteps returns all steps sorted by ID.
func (r *Repository) ListSteps(ctx context.Context) ([]model.Step, error) {
	query := `
		SELECT id, title, status, actions, errors, updated_at
		FROM steps
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query steps: %w", err)
	}
	defer rows.Close()

	steps := []model.Step{}
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return steps, nil
}

// UpdateStepStatus sets the status of a stored step.
func (r *Repository) UpdateStepStatus(ctx context.Context, id string, status model.StepStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q: %w", status, model.ErrNotValid)
	}

	result, err := r.db.ExecContext(ctx, `UPDATE steps SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("could not update step: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("step %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Updated step %s status: %s", id, status)
	return nil
}

// DeleteStep deletes a step, its attempts are deleted in cascade.
func (r *Repository) DeleteStep(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete step: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("step %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted step from repository: %s", id)
	return nil
}

type actionJSON struct {
	URL    string `json:"url"`
	Method string `json:"method,omitempty"`
}

type stepErrorJSON struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func marshalStep(s model.Step) (actions, stepErrors string, err error) {
	as := make(map[string]actionJSON, len(s.Actions))
	for name, a := range s.Actions {
		as[string(name)] = actionJSON{URL: a.URL, Method: a.Method}
	}
	asData, err := json.Marshal(as)
	if err != nil {
		return "", "", fmt.Errorf("could not marshal actions: %w", err)
	}

	es := make([]stepErrorJSON, 0, len(s.Errors))
	for _, e := range s.Errors {
		es = append(es, stepErrorJSON{Message: e.Message, Code: e.Code})
	}
	esData, err := json.Marshal(es)
	if err != nil {
		return "", "", fmt.Errorf("could not marshal errors: %w", err)
	}

	return string(asData), string(esData), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStep(s scanner) (model.Step, error) {
	var step model.Step
	var actions, stepErrors string
	var updatedAt sql.NullInt64

	err := s.Scan(&step.ID, &step.Title, &step.Status, &actions, &stepErrors, &updatedAt)
	if err != nil {
		return model.Step{}, err
	}

	var as map[string]actionJSON
	if err := json.Unmarshal([]byte(actions), &as); err != nil {
		return model.Step{}, fmt.Errorf("could not unmarshal step %s actions: %w", step.ID, err)
	}
	if len(as) > 0 {
		step.Actions = make(map[model.ActionName]model.Action, len(as))
		for name, a := range as {
			step.Actions[model.ActionName(name)] = model.Action{URL: a.URL, Method: a.Method}
		}
	}

	var es []stepErrorJSON
	if err := json.Unmarshal([]byte(stepErrors), &es); err != nil {
		return model.Step{}, fmt.Errorf("could not unmarshal step %s errors: %w", step.ID, err)
	}
	for _, e := range es {
		step.Errors = append(step.Errors, model.StepError{Message: e.Message, Code: e.Code})
	}

	if updatedAt.Valid {
		step.UpdatedAt = timeFromUnix(updatedAt.Int64)
	}

	return step, nil
}

func unixOrNull(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
