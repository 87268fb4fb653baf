package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pipemon-tui/internal/app"
	"pipemon-tui/internal/gateway"
	"pipemon-tui/internal/history"

	tea "github.com/charmbracelet/bubbletea"
)

const fallbackAPIURL = "http://localhost:8000"

func defaultAPIURL() string {
	if url := strings.TrimSpace(os.Getenv("PIPEMON_API_URL")); url != "" {
		return url
	}
	return fallbackAPIURL
}

// defaultStateDir places the history record under the user config dir,
// falling back to a hidden dir in the working directory.
func defaultStateDir() string {
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, "pipemon")
	}
	return ".pipemon"
}

func main() {
	apiURL := flag.String("api-url", defaultAPIURL(), "base URL of the pipeline gateway")
	taskID := flag.String("task", "", "task id to monitor on startup")
	stateDir := flag.String("state-dir", defaultStateDir(), "directory for task history and downloaded outputs")
	configsDir := flag.String("configs-dir", "./configs", "directory scanned for pipeline YAML configs")
	nodePath := flag.String("node", "", "pipeline node path pre-filled in the launch prompt")
	flag.Parse()

	store, err := history.NewStore(*stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize task history: %v\n", err)
		os.Exit(1)
	}

	client := gateway.NewClient(*apiURL)
	model := app.NewModel(client, store, app.Options{
		InitialTaskID: strings.TrimSpace(*taskID),
		StateDir:      *stateDir,
		ConfigsDir:    *configsDir,
		NodePath:      *nodePath,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui exited with error: %v\n", err)
		os.Exit(1)
	}
}
