package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// LoadConfigFile reads a local YAML config and requires a top-level mapping.
func LoadConfigFile(path string) (map[string]any, string, error) {
	rawPath := strings.TrimSpace(path)
	if rawPath == "" {
		return nil, "", fmt.Errorf("config file path is required")
	}
	if strings.Contains(rawPath, "://") {
		return nil, "", fmt.Errorf("only local filesystem paths are supported")
	}

	resolvedPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolve config path %q: %w", rawPath, err)
	}

	blob, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, resolvedPath, fmt.Errorf("read config file %q: %w", resolvedPath, err)
	}

	var cfg map[string]any
	if err := yaml.Unmarshal(blob, &cfg); err != nil {
		return nil, resolvedPath, fmt.Errorf("parse config YAML %q: %w", resolvedPath, err)
	}
	if cfg == nil {
		return nil, resolvedPath, fmt.Errorf("config YAML must be a top-level mapping")
	}
	return cfg, resolvedPath, nil
}

func listConfigFilesInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSpace(entry.Name())
		if name == "" {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, name)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		li := strings.ToLower(files[i])
		lj := strings.ToLower(files[j])
		if li == lj {
			return files[i] < files[j]
		}
		return li < lj
	})
	return files, nil
}

func listConfigsCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		files, err := listConfigFilesInDir(dir)
		return configListMsg{files: files, err: err}
	}
}

// startConfigWatch opens an fsnotify watcher on the configs dir so the
// launch prompt's file list follows external edits. Events are consumed
// through a generation-checked wait cmd; a stale generation means the
// prompt has closed and the event is dropped.
func (m *Model) startConfigWatch() tea.Cmd {
	m.stopConfigWatch()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := watcher.Add(m.opts.ConfigsDir); err != nil {
		_ = watcher.Close()
		return nil
	}
	m.watcher = watcher
	m.watchGen++
	return waitForConfigEventCmd(m.watchGen, watcher)
}

func (m *Model) stopConfigWatch() {
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
	m.watchGen++
}

func waitForConfigEventCmd(watchGen int64, watcher *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case _, ok := <-watcher.Events:
			return configEventMsg{watchGen: watchGen, ok: ok}
		case _, ok := <-watcher.Errors:
			return configEventMsg{watchGen: watchGen, ok: ok}
		}
	}
}
