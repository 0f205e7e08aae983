package fake_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/activator/internal/jobclient/fake"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
)

func TestClientSimulatesJob(t *testing.T) {
	tests := map[string]struct {
		cfg            fake.ClientConfig
		expInitSuccess bool
		expStatuses    []string
	}{
		"A job without pending checks should complete right away.": {
			cfg:            fake.ClientConfig{},
			expInitSuccess: true,
			expStatuses:    []string{"completed", "completed"},
		},

		"A job with pending checks should complete after them.": {
			cfg:            fake.ClientConfig{PendingChecks: 2},
			expInitSuccess: true,
			expStatuses:    []string{"pending", "pending", "completed"},
		},

		"A rejected init should be reported.": {
			cfg:            fake.ClientConfig{RejectInit: true},
			expInitSuccess: false,
			expStatuses:    []string{"completed"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			test.cfg.Logger = log.Noop
			c, err := fake.NewClient(test.cfg)
			require.NoError(err)

			res, err := c.Init(ctx, model.Action{})
			require.NoError(err)
			assert.Equal(test.expInitSuccess, res.Success)

			var got []string
			for range test.expStatuses {
				cr, err := c.Check(ctx, model.Action{})
				require.NoError(err)
				got = append(got, cr.Status)
			}
			assert.Equal(test.expStatuses, got)
		})
	}
}

func TestClientCleanRestartsJob(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c, err := fake.NewClient(fake.ClientConfig{PendingChecks: 1})
	require.NoError(t, err)

	_, _ = c.Init(ctx, model.Action{})
	cr, _ := c.Check(ctx, model.Action{})
	assert.False(cr.Completed())
	cr, _ = c.Check(ctx, model.Action{})
	assert.True(cr.Completed())

	_, _ = c.Clean(ctx, model.Action{})
	cr, _ = c.Check(ctx, model.Action{})
	assert.False(cr.Completed())

	assert.Equal([]model.ActionName{
		model.ActionInit, model.ActionCheck, model.ActionCheck, model.ActionClean, model.ActionCheck,
	}, c.Calls())
}

func TestNewClientInvalidConfig(t *testing.T) {
	_, err := fake.NewClient(fake.ClientConfig{PendingChecks: -1})
	assert.Error(t, err)
}
