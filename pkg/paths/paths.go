// Package paths turns configured root strings into canonical absolute paths
// and back into their shortest environment-variable form.
package paths

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var percentVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// ExpandVars replaces $VAR, ${VAR} and %VAR% placeholders using lookup.
// Unknown %VAR% placeholders are left as they are; unknown $VAR ones expand to "".
func ExpandVars(path string, lookup func(string) (string, bool)) string {
	path = percentVar.ReplaceAllStringFunc(path, func(m string) string {
		if value, ok := lookup(m[1 : len(m)-1]); ok {
			return value
		}
		return m
	})

	return os.Expand(path, func(name string) string {
		value, _ := lookup(name)
		return value
	})
}

// Canonicalize expands environment placeholders in a configured root and
// normalizes it into an absolute, cleaned path.
func Canonicalize(path string) (string, error) {
	expanded := ExpandVars(path, os.LookupEnv)
	if strings.HasPrefix(expanded, "~"+string(filepath.Separator)) || expanded == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
	}

	return filepath.Abs(filepath.Clean(expanded))
}

// Compress returns the shortest form of path obtained by replacing a
// leading environment value with its %VAR% placeholder.
func Compress(path string, environ []string) string {
	shortest := path
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || value == "" {
			continue
		}
		if !strings.HasPrefix(path, value) {
			continue
		}
		// Only replace whole path components.
		rest := path[len(value):]
		if rest != "" && !os.IsPathSeparator(rest[0]) && !os.IsPathSeparator(value[len(value)-1]) {
			continue
		}
		candidate := "%" + name + "%" + rest
		if len(candidate) < len(shortest) {
			shortest = candidate
		}
	}
	return shortest
}
