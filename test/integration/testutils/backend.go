package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Backend is a provisioning server that exposes the step actions under
// /steps/{step}/{action}. Every init starts a job that completes after
// PendingChecks checks.
type Backend struct {
	// PendingChecks is the number of pending checks before a job completes.
	PendingChecks int
	// FailInits is the number of init calls rejected before accepting them.
	FailInits int
	// Token, when set, is required as a bearer token.
	Token string

	server *httptest.Server
	mu     sync.Mutex
	jobs   map[string]int
	calls  []string
}

// NewBackend starts a backend that is closed when the test ends.
func NewBackend(t *testing.T, b *Backend) *Backend {
	t.Helper()

	b.jobs = map[string]int{}
	mux := http.NewServeMux()
	mux.HandleFunc("/steps/{step}/{action}", b.handle)
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)

	return b
}

// URL is the backend base URL.
func (b *Backend) URL() string { return b.server.URL }

// Calls returns the received calls as "step/action", in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string{}, b.calls...)
}

// StepsFile returns a steps file whose step actions point to the backend.
func (b *Backend) StepsFile(stepIDs ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "vars:\n  API: %s\nsteps:\n", b.URL())
	for _, id := range stepIDs {
		fmt.Fprintf(&sb, "  - id: %s\n    title: Step %s\n    actions:\n", id, id)
		for _, action := range []string{"init", "check", "clean", "finish"} {
			method := "POST"
			if action == "check" {
				method = "GET"
			}
			fmt.Fprintf(&sb, "      %s: {url: \"${API}/steps/%s/%s\", method: %s}\n", action, id, action, method)
		}
	}
	return sb.String()
}

func (b *Backend) handle(w http.ResponseWriter, r *http.Request) {
	if b.Token != "" && r.Header.Get("Authorization") != "Bearer "+b.Token {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "unauthorized", "message": "missing token"})
		return
	}

	step, action := r.PathValue("step"), r.PathValue("action")

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, step+"/"+action)

	var resp any
	switch action {
	case "init":
		if b.FailInits > 0 {
			b.FailInits--
			resp = map[string]any{"success": false, "message": "quota exceeded"}
			break
		}
		b.jobs[step] = b.PendingChecks
		resp = map[string]any{"success": true}
	case "check":
		pending, ok := b.jobs[step]
		switch {
		case !ok:
			resp = map[string]any{"status": "not_started", "success": true}
		case pending > 0:
			b.jobs[step] = pending - 1
			resp = map[string]any{"status": "in_progress", "success": true}
		default:
			resp = map[string]any{"status": "completed", "success": true}
		}
	case "clean", "finish":
		delete(b.jobs, step)
		resp = map[string]any{"success": true}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
