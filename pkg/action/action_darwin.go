//go:build darwin

package action

const fileManagerName = "Finder"

func openCommand(path string) (string, []string) {
	return "open", []string{path}
}

// revealCommand selects the file in Finder
func revealCommand(path string) (string, []string) {
	return "open", []string{"-R", path}
}

func alternateArgs(path string) []string {
	return []string{path}
}

func findAlternateManager() string {
	return ""
}
