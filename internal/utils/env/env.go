// Package env handles the template variables used in the steps files.
package env

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var keyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseSpecs parses `KEY=VALUE` specs. A bare `KEY` spec takes its value from the
// process environment.
func ParseSpecs(specs []string) (map[string]string, error) {
	vars := make(map[string]string, len(specs))

	for _, spec := range specs {
		if spec == "" {
			return nil, fmt.Errorf("variable spec cannot be empty")
		}

		if key, value, ok := strings.Cut(spec, "="); ok {
			if !isValidKey(key) {
				return nil, fmt.Errorf("invalid variable key %q", key)
			}

			vars[key] = value
			continue
		}

		if !isValidKey(spec) {
			return nil, fmt.Errorf("invalid variable key %q", spec)
		}

		value, ok := os.LookupEnv(spec)
		if !ok {
			return nil, fmt.Errorf("environment variable %q is not set", spec)
		}

		vars[spec] = value
	}

	return vars, nil
}

// MergeMaps returns a new map with the override values on top of the base ones.
func MergeMaps(base map[string]string, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}

	return merged
}

// Expand replaces `${KEY}` and `$KEY` references with the variable values. All the
// referenced variables must be defined.
func Expand(s string, vars map[string]string) (string, error) {
	var missing []string
	res := os.Expand(s, func(key string) string {
		v, ok := vars[key]
		if !ok {
			missing = append(missing, key)
		}
		return v
	})

	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("undefined variables: %s", strings.Join(slices.Compact(missing), ", "))
	}

	return res, nil
}

// ValidateKeys checks all the map keys are valid variable names.
func ValidateKeys(vars map[string]string) error {
	for k := range vars {
		if !isValidKey(k) {
			return fmt.Errorf("invalid variable key %q", k)
		}
	}
	return nil
}

func isValidKey(k string) bool {
	return keyRegexp.MatchString(k)
}
