package lib_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdklib "github.com/slok/activator/pkg/lib"
	intlib "github.com/slok/activator/test/integration/lib"
	"github.com/slok/activator/test/integration/testutils"
)

func TestSDKActivation(t *testing.T) {
	intlib.NewConfig(t)

	tests := map[string]struct {
		backend     *testutils.Backend
		headers     map[string]string
		retries     int
		expPhase    sdklib.Phase
		expStatus   sdklib.StepStatus
		expAttempts int
		expMsg      string
	}{
		"a job that completes should activate the step": {
			backend:     &testutils.Backend{PendingChecks: 3},
			expPhase:    sdklib.PhaseSuccess,
			expStatus:   sdklib.StepStatusCompleted,
			expAttempts: 1,
		},
		"authenticated backend with headers should activate the step": {
			backend:     &testutils.Backend{Token: "s3cr3t"},
			headers:     map[string]string{"Authorization": "Bearer s3cr3t"},
			expPhase:    sdklib.PhaseSuccess,
			expStatus:   sdklib.StepStatusCompleted,
			expAttempts: 1,
		},
		"authenticated backend without headers should fail the step": {
			backend:     &testutils.Backend{Token: "s3cr3t"},
			expPhase:    sdklib.PhaseError,
			expStatus:   sdklib.StepStatusFailed,
			expAttempts: 1,
			expMsg:      "unexpected status code 401: missing token",
		},
		"a rejected init without retries should fail the step": {
			backend:     &testutils.Backend{FailInits: 1},
			expPhase:    sdklib.PhaseError,
			expStatus:   sdklib.StepStatusFailed,
			expAttempts: 1,
			expMsg:      "quota exceeded",
		},
		"a rejected init with retries should activate the step": {
			backend:     &testutils.Backend{FailInits: 2, PendingChecks: 1},
			retries:     2,
			expPhase:    sdklib.PhaseSuccess,
			expStatus:   sdklib.StepStatusCompleted,
			expAttempts: 3,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			backend := testutils.NewBackend(t, test.backend)
			client := intlib.NewTestClient(t, test.headers)
			intlib.ImportSteps(t, client, backend.StepsFile("test-account"))

			res, err := client.Activate(ctx, "test-account", &sdklib.ActivateOpts{
				RetryPrompt: func(_ context.Context, s sdklib.ActivationState) bool {
					return s.RetryCount < test.retries
				},
			})
			require.NoError(err)

			assert.Equal(test.expPhase, res.State.Phase)
			assert.Equal(test.expStatus, res.Step.Status)
			assert.Len(res.Attempts, test.expAttempts)
			assert.Equal(test.expMsg, res.State.ErrorMessage)

			step, attempts, err := client.GetStep(ctx, "test-account")
			require.NoError(err)
			assert.Equal(test.expStatus, step.Status)
			assert.Len(attempts, test.expAttempts)
		})
	}
}

func TestSDKFailedStepIsCleanedBeforeInit(t *testing.T) {
	intlib.NewConfig(t)
	assert := assert.New(t)
	require := require.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend := testutils.NewBackend(t, &testutils.Backend{FailInits: 1})
	client := intlib.NewTestClient(t, nil)
	intlib.ImportSteps(t, client, backend.StepsFile("test-account"))

	// First activation fails and marks the step as failed.
	res, err := client.Activate(ctx, "test-account", nil)
	require.NoError(err)
	require.Equal(sdklib.PhaseError, res.State.Phase)

	// The next activation cleans the failed job first.
	res, err = client.Activate(ctx, "test-account", nil)
	require.NoError(err)
	assert.Equal(sdklib.PhaseSuccess, res.State.Phase)

	exp := []string{
		"test-account/init",
		"test-account/clean",
		"test-account/init",
		"test-account/check",
	}
	assert.Equal(exp, backend.Calls())
}

func TestSDKActivationCancel(t *testing.T) {
	intlib.NewConfig(t)
	assert := assert.New(t)
	require := require.New(t)

	// The job never completes.
	backend := testutils.NewBackend(t, &testutils.Backend{PendingChecks: 1 << 30})
	client := intlib.NewTestClient(t, nil)
	intlib.ImportSteps(t, client, backend.StepsFile("test-account"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var maxTier int
	_, err := client.Activate(ctx, "test-account", &sdklib.ActivateOpts{
		OnState: func(s sdklib.ActivationState) {
			maxTier = max(maxTier, s.PollingTier)
		},
	})
	require.ErrorIs(err, context.DeadlineExceeded)

	// The polling slowed down to the idle tier.
	assert.Equal(2, maxTier)

	step, attempts, err := client.GetStep(context.Background(), "test-account")
	require.NoError(err)
	assert.Equal(sdklib.StepStatusNotStarted, step.Status)
	assert.Empty(attempts)
}

func TestSDKFinish(t *testing.T) {
	intlib.NewConfig(t)
	assert := assert.New(t)
	require := require.New(t)

	ctx := context.Background()

	backend := testutils.NewBackend(t, &testutils.Backend{})
	client := intlib.NewTestClient(t, nil)
	intlib.ImportSteps(t, client, backend.StepsFile("test-account", "billing"))

	res, err := client.Activate(ctx, "billing", nil)
	require.NoError(err)
	require.Equal(sdklib.PhaseSuccess, res.State.Phase)

	step, err := client.Finish(ctx, "billing")
	require.NoError(err)
	assert.Equal(sdklib.StepStatusNotStarted, step.Status)

	assert.Equal([]string{"billing/init", "billing/check", "billing/finish"}, backend.Calls())
}
