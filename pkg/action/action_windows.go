//go:build windows

package action

import (
	"os"
	"os/exec"
	"path/filepath"
)

const fileManagerName = "explorer"

func openCommand(path string) (string, []string) {
	return "cmd", []string{"/c", "start", "", path}
}

// revealCommand selects the file in Explorer
func revealCommand(path string) (string, []string) {
	return "explorer.exe", []string{"/select," + path}
}

// alternateArgs opens path in the active Total Commander panel.
func alternateArgs(path string) []string {
	return []string{"/a", "/o", path}
}

func findAlternateManager() string {
	for _, exe := range []string{"totalcmd64", "totalcmd"} {
		if path, err := exec.LookPath(exe); err == nil {
			return path
		}
	}
	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
		programFiles := os.Getenv(env)
		if programFiles == "" {
			continue
		}
		for _, exe := range []string{"totalcmd64.exe", "totalcmd.exe"} {
			path := filepath.Join(programFiles, "totalcmd", exe)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
