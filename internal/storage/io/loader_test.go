package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/activator/internal/model"
)

func TestStepsYAMLRepository_GetSteps(t *testing.T) {
	tests := map[string]struct {
		fs       fstest.MapFS
		path     string
		vars     map[string]string
		expSteps []model.Step
		expErr   bool
		errMsg   string
	}{
		"Valid steps file should load successfully": {
			fs: fstest.MapFS{
				"steps.yaml": &fstest.MapFile{
					Data: []byte(`vars:
  API: https://api.test
steps:
  - id: test-account
    title: Create a test account
    status: failed
    actions:
      init: {url: "${API}/steps/test-account/init", method: post}
      clean: {url: "${API}/steps/test-account/clean"}
      check: {url: "${API}/steps/test-account/check", method: GET}
  - id: payments
    status: blocked
    errors:
      - message: Connect the store first
        code: store_not_connected
`),
				},
			},
			path: "steps.yaml",
			expSteps: []model.Step{
				{
					ID:     "test-account",
					Title:  "Create a test account",
					Status: model.StepStatusFailed,
					Actions: map[model.ActionName]model.Action{
						model.ActionInit:  {URL: "https://api.test/steps/test-account/init", Method: "POST"},
						model.ActionClean: {URL: "https://api.test/steps/test-account/clean"},
						model.ActionCheck: {URL: "https://api.test/steps/test-account/check", Method: "GET"},
					},
				},
				{
					ID:     "payments",
					Status: model.StepStatusBlocked,
					Errors: []model.StepError{{Message: "Connect the store first", Code: "store_not_connected"}},
				},
			},
		},
		"Vars should override the file vars": {
			fs: fstest.MapFS{
				"steps.yaml": &fstest.MapFile{
					Data: []byte(`vars:
  API: https://api.test
steps:
  - id: s1
    actions:
      init: {url: "${API}/init"}
`),
				},
			},
			path: "steps.yaml",
			vars: map[string]string{"API": "http://127.0.0.1:8080"},
			expSteps: []model.Step{
				{
					ID:     "s1",
					Status: model.StepStatusNotStarted,
					Actions: map[model.ActionName]model.Action{
						model.ActionInit: {URL: "http://127.0.0.1:8080/init"},
					},
				},
			},
		},
		"Undefined vars should return error": {
			fs: fstest.MapFS{
				"steps.yaml": &fstest.MapFile{
					Data: []byte(`steps:
  - id: s1
    actions:
      init: {url: "${API}/init"}
`),
				},
			},
			path:   "steps.yaml",
			expErr: true,
			errMsg: "undefined variables: API",
		},
		"Invalid status should return error": {
			fs: fstest.MapFS{
				"steps.yaml": &fstest.MapFile{
					Data: []byte(`steps:
  - id: s1
    status: done
`),
				},
			},
			path:   "steps.yaml",
			expErr: true,
			errMsg: `unknown status "done"`,
		},
		"Duplicated steps should return error": {
			fs: fstest.MapFS{
				"steps.yaml": &fstest.MapFile{
					Data: []byte(`steps:
  - id: s1
  - id: s1
`),
				},
			},
			path:   "steps.yaml",
			expErr: true,
			errMsg: `step "s1" is duplicated`,
		},
		"Empty steps file should return error": {
			fs: fstest.MapFS{
				"empty.yaml": &fstest.MapFile{
					Data: []byte(`---
`),
				},
			},
			path:   "empty.yaml",
			expErr: true,
			errMsg: "at least one step is required",
		},
		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading steps file",
		},
		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewStepsYAMLRepository(tc.fs)
			steps, err := repo.GetSteps(context.Background(), tc.path, tc.vars)

			if tc.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expSteps, steps)
		})
	}
}

func TestStepsYAMLRepository_GetSteps_ContextCancellation(t *testing.T) {
	fs := fstest.MapFS{
		"steps.yaml": &fstest.MapFile{
			Data: []byte(`steps:
  - id: s1
`),
		},
	}

	repo := NewStepsYAMLRepository(fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetSteps(ctx, "steps.yaml", nil)
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}
