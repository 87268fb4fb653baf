package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pipemon-tui/internal/gateway"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

const (
	statusPollInterval  = 2 * time.Second
	logsPollInterval    = 3 * time.Second
	queuePollInterval   = 10 * time.Second
	historyPollInterval = 10 * time.Second

	logTailLines = 500

	historyFetchConcurrency = 8
)

const (
	logsEmptyText   = "No logs yet..."
	logsPlaceholder = "Waiting for logs..."
)

// Per-task result msgs carry the selection generation they were issued
// under; results from a generation the user has already left are discarded.
type statusFetchedMsg struct {
	gen   int64
	reply gateway.StatusReply
	err   error
}

type paramsFetchedMsg struct {
	gen   int64
	reply gateway.ParametersReply
	err   error
}

type logsFetchedMsg struct {
	gen   int64
	reply gateway.LogsReply
	err   error
}

type queueFetchedMsg struct {
	reply gateway.QueueReply
	err   error
}

type historyStatusesMsg struct {
	statuses map[string]gateway.Status
}

type interruptDoneMsg struct {
	taskID string
	err    error
}

type logsDeletedMsg struct {
	gen    int64
	taskID string
	err    error
}

type outputSavedMsg struct {
	taskID   string
	path     string
	notFound bool
	err      error
}

type runQueuedMsg struct {
	taskID string
	err    error
}

type statusTickMsg struct {
	gen int64
}

type logsTickMsg struct {
	gen int64
}

type queueTickMsg struct{}

type historyTickMsg struct{}

type configListMsg struct {
	files []string
	err   error
}

type configEventMsg struct {
	watchGen int64
	ok       bool
}

func statusTickCmd(gen int64) tea.Cmd {
	return tea.Tick(statusPollInterval, func(time.Time) tea.Msg {
		return statusTickMsg{gen: gen}
	})
}

func logsTickCmd(gen int64) tea.Cmd {
	return tea.Tick(logsPollInterval, func(time.Time) tea.Msg {
		return logsTickMsg{gen: gen}
	})
}

func queueTickCmd() tea.Cmd {
	return tea.Tick(queuePollInterval, func(time.Time) tea.Msg {
		return queueTickMsg{}
	})
}

func historyTickCmd() tea.Cmd {
	return tea.Tick(historyPollInterval, func(time.Time) tea.Msg {
		return historyTickMsg{}
	})
}

func fetchStatusCmd(client *gateway.Client, taskID string, gen int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		reply, err := client.TaskStatus(ctx, taskID)
		return statusFetchedMsg{gen: gen, reply: reply, err: err}
	}
}

func fetchParametersCmd(client *gateway.Client, taskID string, gen int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		reply, err := client.TaskParameters(ctx, taskID)
		return paramsFetchedMsg{gen: gen, reply: reply, err: err}
	}
}

func fetchLogsCmd(client *gateway.Client, taskID string, gen int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		reply, err := client.TaskLogs(ctx, taskID, logTailLines)
		return logsFetchedMsg{gen: gen, reply: reply, err: err}
	}
}

func fetchQueueCmd(client *gateway.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		reply, err := client.Queue(ctx)
		return queueFetchedMsg{reply: reply, err: err}
	}
}

// refreshHistoryStatusesCmd fetches lightweight status for the given ids
// with bounded concurrency. A per-id failure is cached as a sentinel so a
// permanently broken id is not retried forever.
func refreshHistoryStatusesCmd(client *gateway.Client, ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	ids = append([]string(nil), ids...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		var mu sync.Mutex
		statuses := make(map[string]gateway.Status, len(ids))

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(historyFetchConcurrency)
		for _, taskID := range ids {
			group.Go(func() error {
				reply, err := client.TaskStatus(groupCtx, taskID)
				status := gateway.StatusError
				switch {
				case err == nil && reply.Found:
					status = reply.Status
				case err == nil:
					status = gateway.StatusNotFound
				}
				mu.Lock()
				statuses[taskID] = status
				mu.Unlock()
				return nil
			})
		}
		_ = group.Wait()
		return historyStatusesMsg{statuses: statuses}
	}
}

func interruptCmd(client *gateway.Client, taskID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := client.Interrupt(ctx, taskID)
		return interruptDoneMsg{taskID: taskID, err: err}
	}
}

func deleteLogsCmd(client *gateway.Client, taskID string, gen int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := client.DeleteTaskLogs(ctx, taskID)
		return logsDeletedMsg{gen: gen, taskID: taskID, err: err}
	}
}

func saveOutputCmd(client *gateway.Client, taskID, outputsDir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()
		reply, err := client.DownloadOutput(ctx, taskID)
		if err != nil {
			return outputSavedMsg{taskID: taskID, err: err}
		}
		if !reply.Found {
			return outputSavedMsg{taskID: taskID, notFound: true}
		}
		if err := os.MkdirAll(outputsDir, 0o755); err != nil {
			return outputSavedMsg{taskID: taskID, err: err}
		}
		// Base strips any path components a hostile server could send.
		path := filepath.Join(outputsDir, filepath.Base(reply.Filename))
		if err := os.WriteFile(path, reply.Data, 0o644); err != nil {
			return outputSavedMsg{taskID: taskID, err: err}
		}
		return outputSavedMsg{taskID: taskID, path: path}
	}
}

func runPipelineCmd(client *gateway.Client, req gateway.RunRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		taskID, err := client.RunPipeline(ctx, req)
		return runQueuedMsg{taskID: taskID, err: err}
	}
}
