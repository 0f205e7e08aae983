package printer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/printer"
)

func stepFixture() model.Step {
	return model.Step{
		ID:     "payments",
		Title:  "Enable payments",
		Status: model.StepStatusFailed,
		Actions: map[model.ActionName]model.Action{
			model.ActionInit:  {URL: "https://api.test/steps/payments/init", Method: "POST"},
			model.ActionCheck: {URL: "https://api.test/steps/payments/check", Method: "GET"},
		},
		Errors:    []model.StepError{{Message: "KYC pending", Code: "kyc"}},
		UpdatedAt: time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC),
	}
}

func attemptsFixture() []model.Attempt {
	return []model.Attempt{
		{
			ID:           "01H2QWERTYASDFGZXCVBNMLKJH",
			StepID:       "payments",
			Phase:        model.PhaseError,
			Progress:     45,
			RetryCount:   1,
			ErrorMessage: "provider timeout",
			StartedAt:    time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC),
			FinishedAt:   time.Date(2026, 1, 30, 10, 1, 5, 0, time.UTC),
		},
	}
}

func TestTablePrinterPrintList(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintList([]model.Step{stepFixture(), {ID: "store", Status: model.StepStatusNotStarted}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "check,init")
	assert.Contains(t, lines[2], "never")
}

func TestTablePrinterPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintStatus(stepFixture(), attemptsFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Status:     failed")
	assert.Contains(t, out, "Error:      KYC pending (kyc)")
	assert.Contains(t, out, "provider timeout")
	assert.Contains(t, out, "1m5s")
}

func TestTablePrinterPrintActivation(t *testing.T) {
	tests := map[string]struct {
		state  model.ActivationState
		expOut string
	}{
		"success": {
			state:  model.ActivationState{Phase: model.PhaseSuccess, Progress: 100},
			expOut: "Step payments activated\n",
		},
		"error with retries": {
			state:  model.ActivationState{Phase: model.PhaseError, ErrorMessage: "boom", RetryCount: 2},
			expOut: "Step payments activation failed: boom\nRetries:    2\n",
		},
		"blocked": {
			state:  model.ActivationState{Phase: model.PhaseBlocked, ErrorMessage: "KYC pending"},
			expOut: "Step payments is blocked: KYC pending\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			p := printer.NewTablePrinter(&buf)

			err := p.PrintActivation(stepFixture(), test.state)
			require.NoError(t, err)
			assert.Equal(t, test.expOut, buf.String())
		})
	}
}

func TestJSONPrinterPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintStatus(stepFixture(), attemptsFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"status": "failed"`)
	assert.Contains(t, out, `"url": "https://api.test/steps/payments/init"`)
	assert.Contains(t, out, `"code": "kyc"`)
	assert.Contains(t, out, `"error_message": "provider timeout"`)
	assert.Contains(t, out, `"updated_at": "2026-01-30T10:00:00Z"`)
}

func TestJSONPrinterPrintListWithoutUpdate(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintList([]model.Step{{ID: "store", Status: model.StepStatusNotStarted}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"updated_at": null`)
}

func TestJSONPrinterPrintActivation(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	slow := time.Date(2026, 1, 30, 10, 0, 51, 0, time.UTC)
	err := p.PrintActivation(stepFixture(), model.ActivationState{StepID: "payments", Phase: model.PhasePolling, Progress: 92, PollingTier: 1, SlowTierStartedAt: &slow})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"phase": "polling"`)
	assert.Contains(t, out, `"polling_tier": 1`)
	assert.Contains(t, out, `"slow_tier_started_at": "2026-01-30T10:00:51Z"`)
}

func TestTablePrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(buf.String()))
}
