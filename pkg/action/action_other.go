//go:build !windows && !darwin

package action

import "path/filepath"

const fileManagerName = "file manager"

func openCommand(path string) (string, []string) {
	return "xdg-open", []string{path}
}

// revealCommand opens the containing directory, xdg-open cannot select a file.
func revealCommand(path string) (string, []string) {
	return "xdg-open", []string{filepath.Dir(path)}
}

func alternateArgs(path string) []string {
	return []string{path}
}

func findAlternateManager() string {
	return ""
}
