package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/activator/internal/model"
)

func TestRetryPrompt(t *testing.T) {
	tests := map[string]struct {
		input     string
		expAnswer bool
	}{
		"yes should retry":              {input: "yes\n", expAnswer: true},
		"y should retry":                {input: " Y \n", expAnswer: true},
		"no should not retry":           {input: "n\n", expAnswer: false},
		"empty should not retry":        {input: "\n", expAnswer: false},
		"closed input should not retry": {input: "", expAnswer: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			prompt := newRetryPrompt(strings.NewReader(test.input), &out)

			got := prompt(context.Background(), model.ActivationState{StepID: "payments", ErrorMessage: "quota exceeded"})
			assert.Equal(t, test.expAnswer, got)
			assert.Equal(t, "Activation of payments failed: quota exceeded\nRetry? [y/N] ", out.String())
		})
	}
}
