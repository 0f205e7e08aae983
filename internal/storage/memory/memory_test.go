package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage/memory"
)

func stepFixture(id string) model.Step {
	return model.Step{
		ID:     id,
		Title:  "Create test account",
		Status: model.StepStatusNotStarted,
		Actions: map[model.ActionName]model.Action{
			model.ActionInit:  {URL: "https://api.test/" + id + "/init", Method: "POST"},
			model.ActionCheck: {URL: "https://api.test/" + id + "/check", Method: "POST"},
		},
	}
}

func TestRepositorySteps(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  error
	}{
		"Storing a step should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.UpsertStep(ctx, stepFixture("s1"))
				require.NoError(t, err)

				retrieved, err := repo.GetStep(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, stepFixture("s1"), *retrieved)

				return nil
			},
		},

		"Storing a step twice should replace it": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.UpsertStep(ctx, stepFixture("s1"))
				require.NoError(t, err)

				s := stepFixture("s1")
				s.Title = "Other"
				s.Status = model.StepStatusBlocked
				err = repo.UpsertStep(ctx, s)
				require.NoError(t, err)

				retrieved, err := repo.GetStep(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, "Other", retrieved.Title)
				assert.Equal(t, model.StepStatusBlocked, retrieved.Status)

				return nil
			},
		},

		"Storing an invalid step should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.UpsertStep(ctx, model.Step{ID: "s1", Status: "wrong"})
			},
			expErr: model.ErrNotValid,
		},

		"Modifying a retrieved step should not modify the stored one": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.UpsertStep(ctx, stepFixture("s1"))
				require.NoError(t, err)

				retrieved, err := repo.GetStep(ctx, "s1")
				require.NoError(t, err)
				delete(retrieved.Actions, model.ActionInit)

				retrieved, err = repo.GetStep(ctx, "s1")
				require.NoError(t, err)
				assert.True(t, retrieved.HasAction(model.ActionInit))

				return nil
			},
		},

		"Getting a missing step should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				_, err := repo.GetStep(ctx, "missing")
				return err
			},
			expErr: model.ErrNotFound,
		},

		"Listing steps should return them sorted by ID": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				for _, id := range []string{"s3", "s1", "s2"} {
					require.NoError(t, repo.UpsertStep(ctx, stepFixture(id)))
				}

				steps, err := repo.ListSteps(ctx)
				require.NoError(t, err)
				require.Len(t, steps, 3)
				assert.Equal(t, "s1", steps[0].ID)
				assert.Equal(t, "s2", steps[1].ID)
				assert.Equal(t, "s3", steps[2].ID)

				return nil
			},
		},

		"Updating a step status should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.UpsertStep(ctx, stepFixture("s1")))

				err := repo.UpdateStepStatus(ctx, "s1", model.StepStatusCompleted)
				require.NoError(t, err)

				retrieved, err := repo.GetStep(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, model.StepStatusCompleted, retrieved.Status)

				return nil
			},
		},

		"Updating a missing step status should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.UpdateStepStatus(ctx, "missing", model.StepStatusCompleted)
			},
			expErr: model.ErrNotFound,
		},

		"Updating a step with an unknown status should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.UpsertStep(ctx, stepFixture("s1")))
				return repo.UpdateStepStatus(ctx, "s1", "wrong")
			},
			expErr: model.ErrNotValid,
		},

		"Deleting a step should remove it and its attempts": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.UpsertStep(ctx, stepFixture("s1")))
				require.NoError(t, repo.CreateAttempt(ctx, model.Attempt{StepID: "s1", Phase: model.PhaseSuccess}))

				err := repo.DeleteStep(ctx, "s1")
				require.NoError(t, err)

				_, err = repo.GetStep(ctx, "s1")
				assert.True(t, errors.Is(err, model.ErrNotFound))

				attempts, err := repo.ListAttempts(ctx, "s1")
				require.NoError(t, err)
				assert.Empty(t, attempts)

				return nil
			},
		},

		"Deleting a missing step should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.DeleteStep(ctx, "missing")
			},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{
				Logger: log.Noop,
			})
			require.NoError(t, err)

			err = test.actions(context.Background(), t, repo)

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepositoryAttempts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)
	require.NoError(repo.UpsertStep(ctx, stepFixture("s1")))

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(repo.CreateAttempt(ctx, model.Attempt{ID: "a1", StepID: "s1", Phase: model.PhaseError, FinishedAt: t0}))
	require.NoError(repo.CreateAttempt(ctx, model.Attempt{ID: "a2", StepID: "s1", Phase: model.PhaseSuccess, RetryCount: 1, FinishedAt: t0.Add(time.Minute)}))
	require.NoError(repo.CreateAttempt(ctx, model.Attempt{StepID: "s1", Phase: model.PhaseError, FinishedAt: t0.Add(time.Minute)}))

	err = repo.CreateAttempt(ctx, model.Attempt{ID: "a1", StepID: "s1"})
	assert.ErrorIs(err, model.ErrAlreadyExists)

	err = repo.CreateAttempt(ctx, model.Attempt{StepID: "missing"})
	assert.ErrorIs(err, model.ErrNotFound)

	attempts, err := repo.ListAttempts(ctx, "s1")
	require.NoError(err)
	require.Len(attempts, 3)
	assert.NotEmpty(attempts[0].ID)
	assert.Equal(model.PhaseError, attempts[0].Phase)
	assert.Equal("a2", attempts[1].ID)
	assert.Equal("a1", attempts[2].ID)
}
