package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
)

var _ storage.AttemptRepository = (*AttemptRepository)(nil)

// AttemptRepositoryConfig is the configuration for the SQLite attempt repository.
type AttemptRepositoryConfig struct {
	DB     *sql.DB
	Logger log.Logger
}

func (c *AttemptRepositoryConfig) defaults() error {
	if c.DB == nil {
		return fmt.Errorf("db is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.AttemptRepository"})
	return nil
}

// AttemptRepository is a SQLite implementation of storage.AttemptRepository.
type AttemptRepository struct {
	db     *sql.DB
	logger log.Logger
}

// NewAttemptRepository creates a new SQLite attempt repository. The DB is usually
// the one of the step repository.
func NewAttemptRepository(cfg AttemptRepositoryConfig) (*AttemptRepository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &AttemptRepository{
		db:     cfg.DB,
		logger: cfg.Logger,
	}, nil
}

// CreateAttempt stores an activation attempt. An ID is generated if missing.
func (r *AttemptRepository) CreateAttempt(ctx context.Context, a model.Attempt) error {
	if a.ID == "" {
		a.ID = ulid.Make().String()
	}

	query := `
		INSERT INTO attempts (id, step_id, phase, progress, retry_count, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.StepID,
		a.Phase,
		a.Progress,
		a.RetryCount,
		a.ErrorMessage,
		a.StartedAt.Unix(),
		a.FinishedAt.Unix(),
	)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "UNIQUE constraint failed: attempts."):
			return fmt.Errorf("attempt with id %s: %w", a.ID, model.ErrAlreadyExists)
		case strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
			return fmt.Errorf("step %s: %w", a.StepID, model.ErrNotFound)
		}
		return fmt.Errorf("could not insert attempt: %w", err)
	}

	r.logger.Debugf("Created attempt %s for step %s", a.ID, a.StepID)
	return nil
}

// ListAttempts returns the attempts of a step, newest first.
func (r *AttemptRepository) ListAttempts(ctx context.Context, stepID string) ([]model.Attempt, error) {
	query := `
		SELECT id, step_id, phase, progress, retry_count, error_message, started_at, finished_at
		FROM attempts
		WHERE step_id = ?
		ORDER BY finished_at DESC, rowid DESC
	`

	rows, err := r.db.QueryContext(ctx, query, stepID)
	if err != nil {
		return nil, fmt.Errorf("could not query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var startedAt, finishedAt int64
		err := rows.Scan(&a.ID, &a.StepID, &a.Phase, &a.Progress, &a.RetryCount, &a.ErrorMessage, &startedAt, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		a.StartedAt = timeFromUnix(startedAt)
		a.FinishedAt = timeFromUnix(finishedAt)
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}
