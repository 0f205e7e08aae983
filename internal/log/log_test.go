package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/activator/internal/log"
)

func TestCtxValues(t *testing.T) {
	tests := map[string]struct {
		setup     func(ctx context.Context) context.Context
		expValues log.Kv
	}{
		"A context without values should return empty values.": {
			setup:     func(ctx context.Context) context.Context { return ctx },
			expValues: log.Kv{},
		},

		"Values set on the context should be returned.": {
			setup: func(ctx context.Context) context.Context {
				return log.CtxWithValues(ctx, log.Kv{"step": "s1"})
			},
			expValues: log.Kv{"step": "s1"},
		},

		"Values set multiple times should be merged, overriding the old ones.": {
			setup: func(ctx context.Context) context.Context {
				ctx = log.CtxWithValues(ctx, log.Kv{"step": "s1", "attempt": 1})
				return log.CtxWithValues(ctx, log.Kv{"attempt": 2})
			},
			expValues: log.Kv{"step": "s1", "attempt": 2},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := test.setup(context.Background())
			assert.Equal(t, test.expValues, log.ValuesFromCtx(ctx))
		})
	}
}

func TestNoopSetValuesOnCtx(t *testing.T) {
	ctx := context.Background()
	gotCtx := log.Noop.SetValuesOnCtx(ctx, log.Kv{"k": "v"})
	assert.Equal(t, ctx, gotCtx)
}
