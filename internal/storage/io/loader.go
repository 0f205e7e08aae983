package io

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
	"github.com/slok/activator/internal/utils/env"
)

var _ storage.StepFileRepository = (*StepsYAMLRepository)(nil)

// StepsYAMLRepository loads step descriptors from YAML files.
type StepsYAMLRepository struct {
	fs fs.FS
}

// NewStepsYAMLRepository creates a new YAML steps repository.
func NewStepsYAMLRepository(filesystem fs.FS) *StepsYAMLRepository {
	return &StepsYAMLRepository{fs: filesystem}
}

// GetSteps loads the steps of a YAML file and returns validated domain models.
// The `${VAR}` references are expanded with the file `vars`, overridden by vars.
func (r *StepsYAMLRepository) GetSteps(ctx context.Context, path string, vars map[string]string) ([]model.Step, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading steps file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var file StepsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := env.ValidateKeys(file.Vars); err != nil {
		return nil, fmt.Errorf("invalid vars: %w", err)
	}
	allVars := env.MergeMaps(file.Vars, vars)

	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("at least one step is required: %w", model.ErrNotValid)
	}

	steps := make([]model.Step, 0, len(file.Steps))
	seen := map[string]bool{}
	for i, s := range file.Steps {
		step, err := s.toModel(allVars)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if seen[step.ID] {
			return nil, fmt.Errorf("step %q is duplicated: %w", step.ID, model.ErrNotValid)
		}
		seen[step.ID] = true

		steps = append(steps, step)
	}

	return steps, nil
}

// StepsFile represents the YAML structure of a steps file.
type StepsFile struct {
	Vars  map[string]string `yaml:"vars"`
	Steps []Step            `yaml:"steps"`
}

// Step represents the YAML structure of a step descriptor.
type Step struct {
	ID      string            `yaml:"id"`
	Title   string            `yaml:"title"`
	Status  string            `yaml:"status"`
	Actions map[string]Action `yaml:"actions"`
	Errors  []StepError       `yaml:"errors"`
}

// Action represents the YAML structure of a remote action.
type Action struct {
	URL    string `yaml:"url"`
	Method string `yaml:"method"`
}

// StepError represents the YAML structure of a step error.
type StepError struct {
	Message string `yaml:"message"`
	Code    string `yaml:"code"`
}

func (s Step) toModel(vars map[string]string) (model.Step, error) {
	status := s.Status
	if status == "" {
		status = string(model.StepStatusNotStarted)
	}

	step := model.Step{
		ID:     s.ID,
		Title:  s.Title,
		Status: model.StepStatus(status),
	}

	if len(s.Actions) > 0 {
		step.Actions = make(map[model.ActionName]model.Action, len(s.Actions))
		for name, a := range s.Actions {
			url, err := env.Expand(a.URL, vars)
			if err != nil {
				return model.Step{}, fmt.Errorf("action %q url: %w", name, err)
			}
			step.Actions[model.ActionName(name)] = model.Action{
				URL:    url,
				Method: strings.ToUpper(a.Method),
			}
		}
	}

	for _, e := range s.Errors {
		step.Errors = append(step.Errors, model.StepError{Message: e.Message, Code: e.Code})
	}

	return step, nil
}
