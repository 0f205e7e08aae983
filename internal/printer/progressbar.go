package printer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/slok/activator/internal/model"
)

const progressBarWidth = 30

// ProgressBar renders the activation state changes as a single terminal line,
// for example `[=========                     ]  30% initializing`.
// It satisfies the controller observer contract.
type ProgressBar struct {
	w    io.Writer
	mu   sync.Mutex
	open bool
}

// NewProgressBar creates a new progress bar that writes to w, usually stderr.
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{w: w}
}

// StateChanged redraws the bar. A terminal phase ends the line.
func (p *ProgressBar) StateChanged(s model.ActivationState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pct := min(max(s.Progress, 0), 100)
	filled := pct * progressBarWidth / 100
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled)

	label := string(s.Phase)
	if s.Phase == model.PhasePolling && s.PollingTier == 2 {
		label += ", taking longer than usual"
	}

	fmt.Fprintf(p.w, "\r  [%s] %3d%% %-40s", bar, pct, label)
	p.open = true

	if s.Phase.Terminal() {
		fmt.Fprintln(p.w)
		p.open = false
	}
}

// JustCompleted prints the completion line.
func (p *ProgressBar) JustCompleted(stepID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.open {
		fmt.Fprintln(p.w)
		p.open = false
	}
	fmt.Fprintf(p.w, "  step %s is ready\n", stepID)
}
