package app

import (
	"strings"
	"testing"

	"pipemon-tui/internal/gateway"
	"pipemon-tui/internal/history"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.StateDir == "" {
		opts.StateDir = t.TempDir()
	}
	store, err := history.NewStore(opts.StateDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	client := gateway.NewClient("http://127.0.0.1:0")
	return NewModel(client, store, opts)
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next, cmd
}

func runningReply(taskID string, progress float64) gateway.StatusReply {
	return gateway.StatusReply{
		TaskID:      taskID,
		Found:       true,
		Status:      gateway.StatusRunning,
		Progress:    progress,
		HasProgress: true,
		Message:     "working",
	}
}

func TestSelectTaskBumpsGenerationAndResetsState(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	if m.taskGen != 1 {
		t.Fatalf("taskGen = %d, want 1", m.taskGen)
	}

	m.applyStatusReply(runningReply("task-a", 0.4))
	m.setLogText("log output for a")

	cmd := m.selectTask("task-b")
	if cmd == nil {
		t.Fatal("selectTask returned nil cmd for a new task")
	}
	if m.taskGen != 2 {
		t.Fatalf("taskGen = %d, want 2", m.taskGen)
	}
	if m.status != "" || m.hasProgress || m.logText != "" {
		t.Fatalf("per-task state not reset: status=%q hasProgress=%v logText=%q",
			m.status, m.hasProgress, m.logText)
	}

	// A result issued under the old generation must be discarded.
	m, _ = applyMsg(t, m, statusFetchedMsg{gen: 1, reply: runningReply("task-a", 0.9)})
	if m.status != "" {
		t.Fatalf("stale result was applied: status = %q", m.status)
	}

	m, _ = applyMsg(t, m, statusFetchedMsg{gen: 2, reply: runningReply("task-b", 0.1)})
	if m.status != gateway.StatusRunning || m.progress != 0.1 {
		t.Fatalf("fresh result not applied: status=%q progress=%v", m.status, m.progress)
	}
}

func TestSelectTaskSameIDIsNoOp(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m.applyStatusReply(runningReply("task-a", 0.5))
	revBefore := m.statusRev

	if cmd := m.selectTask("task-a"); cmd != nil {
		t.Fatal("selecting the active task returned a cmd")
	}
	if m.taskGen != 1 {
		t.Fatalf("taskGen = %d, want 1", m.taskGen)
	}
	if m.statusRev != revBefore || !m.hasProgress {
		t.Fatal("selecting the active task mutated task state")
	}
}

func TestDuplicateStatusDoesNotPublish(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m.applyStatusReply(runningReply("task-a", 0.3))
	revAfterFirst := m.statusRev
	if revAfterFirst == 0 {
		t.Fatal("first status was not published")
	}

	m.applyStatusReply(runningReply("task-a", 0.3))
	if m.statusRev != revAfterFirst {
		t.Fatalf("statusRev = %d after identical reply, want %d", m.statusRev, revAfterFirst)
	}

	m.applyStatusReply(runningReply("task-a", 0.4))
	if m.statusRev != revAfterFirst+1 {
		t.Fatalf("statusRev = %d after progress change, want %d", m.statusRev, revAfterFirst+1)
	}
}

func TestStatusTickStopsAfterTerminalStatus(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m.applyStatusReply(runningReply("task-a", 0.5))

	_, cmd := applyMsg(t, m, statusTickMsg{gen: m.taskGen})
	if cmd == nil {
		t.Fatal("tick chain died while the task was still running")
	}

	m.applyStatusReply(gateway.StatusReply{TaskID: "task-a", Found: true, Status: gateway.StatusCompleted})
	_, cmd = applyMsg(t, m, statusTickMsg{gen: m.taskGen})
	if cmd != nil {
		t.Fatal("tick chain survived a terminal status")
	}
	_, cmd = applyMsg(t, m, logsTickMsg{gen: m.taskGen})
	if cmd != nil {
		t.Fatal("log tick chain survived a terminal status")
	}
}

func TestStaleTickIsDropped(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m.applyStatusReply(runningReply("task-a", 0.2))
	_ = m.selectTask("task-b")

	_, cmd := applyMsg(t, m, statusTickMsg{gen: 1})
	if cmd != nil {
		t.Fatal("tick from an abandoned generation was rescheduled")
	}
}

func TestMissingLogsPlaceholderAndRetention(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})

	// No log file yet: show the waiting placeholder.
	m, _ = applyMsg(t, m, logsFetchedMsg{gen: 1, reply: gateway.LogsReply{TaskID: "task-a"}})
	if m.logText != logsPlaceholder {
		t.Fatalf("logText = %q, want placeholder", m.logText)
	}

	m, _ = applyMsg(t, m, logsFetchedMsg{gen: 1, reply: gateway.LogsReply{TaskID: "task-a", Found: true, Logs: "line one\nline two"}})
	if !strings.Contains(m.logText, "line two") {
		t.Fatalf("logText = %q, want fetched logs", m.logText)
	}

	// The log file vanishing server-side must not blank text the user
	// has already seen.
	m, _ = applyMsg(t, m, logsFetchedMsg{gen: 1, reply: gateway.LogsReply{TaskID: "task-a"}})
	if !strings.Contains(m.logText, "line two") {
		t.Fatalf("logText = %q, want retained logs", m.logText)
	}
}

func TestUnchangedLogsDoNotBumpRevision(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	reply := gateway.LogsReply{TaskID: "task-a", Found: true, Logs: "same text"}

	m, _ = applyMsg(t, m, logsFetchedMsg{gen: 1, reply: reply})
	rev := m.logsRev
	m, _ = applyMsg(t, m, logsFetchedMsg{gen: 1, reply: reply})
	if m.logsRev != rev {
		t.Fatalf("logsRev = %d after identical tail, want %d", m.logsRev, rev)
	}
}

func TestQueueDiffSuppression(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{})
	reply := gateway.QueueReply{PendingTasks: []string{"t1", "t2"}, ScheduledTasks: []string{"t3"}}

	m.applyQueueReply(reply)
	if m.queueRev != 1 {
		t.Fatalf("queueRev = %d, want 1", m.queueRev)
	}
	m.applyQueueReply(reply)
	if m.queueRev != 1 {
		t.Fatalf("queueRev = %d after identical queue, want 1", m.queueRev)
	}
	m.applyQueueReply(gateway.QueueReply{PendingTasks: []string{"t2"}, ScheduledTasks: []string{"t3"}})
	if m.queueRev != 2 {
		t.Fatalf("queueRev = %d after queue change, want 2", m.queueRev)
	}
	if len(m.queueItems()) != 2 {
		t.Fatalf("queueItems = %d, want 2", len(m.queueItems()))
	}
}

func TestCancelSuccessTriggersImmediateRefresh(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m.applyStatusReply(runningReply("task-a", 0.5))

	m, cmd := applyMsg(t, m, interruptDoneMsg{taskID: "task-a"})
	if cmd == nil {
		t.Fatal("successful cancel returned no refresh cmd")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("cancel refresh cmd produced %T, want tea.BatchMsg", cmd())
	}
	if len(batch) != 2 {
		t.Fatalf("cancel refresh batch has %d cmds, want queue + status", len(batch))
	}
	if !strings.Contains(m.statusText, "Cancellation requested") {
		t.Fatalf("statusText = %q", m.statusText)
	}
}

func TestCancelOfOtherTaskSkipsStatusRefresh(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	_, cmd := applyMsg(t, m, interruptDoneMsg{taskID: "task-z"})
	if cmd == nil {
		t.Fatal("cancel returned no cmd")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("cmd produced %T, want tea.BatchMsg", cmd())
	}
	if len(batch) != 1 {
		t.Fatalf("batch has %d cmds, want queue refresh only", len(batch))
	}
}

func TestPendingHistoryIDsSkipsTerminal(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{})
	m.store.AddTask("t1")
	m.store.AddTask("t2")
	m.store.AddTask("t3")
	m.historyStatuses["t1"] = gateway.StatusCompleted
	m.historyStatuses["t2"] = gateway.StatusRunning

	ids := m.pendingHistoryIDs()
	if len(ids) != 2 {
		t.Fatalf("pendingHistoryIDs = %v, want t3 and t2", ids)
	}
	for _, id := range ids {
		if id == "t1" {
			t.Fatal("terminal id t1 was scheduled for refresh")
		}
	}
}

func TestHistoryStatusMergeBumpsRevisionOnlyOnChange(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{})
	m.store.AddTask("t1")

	m.mergeHistoryStatuses(map[string]gateway.Status{"t1": gateway.StatusRunning})
	rev := m.historyRev
	m.mergeHistoryStatuses(map[string]gateway.Status{"t1": gateway.StatusRunning})
	if m.historyRev != rev {
		t.Fatalf("historyRev = %d after identical merge, want %d", m.historyRev, rev)
	}
	m.mergeHistoryStatuses(map[string]gateway.Status{"t1": gateway.StatusCompleted})
	if m.historyRev != rev+1 {
		t.Fatalf("historyRev = %d after change, want %d", m.historyRev, rev+1)
	}
}

func TestNotFoundStatusIsTerminalState(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m.applyStatusReply(gateway.StatusReply{TaskID: "task-a"})
	if m.status != gateway.StatusNotFound {
		t.Fatalf("status = %q, want NOT_FOUND", m.status)
	}
	if m.pollingActive() {
		t.Fatal("polling stayed active for an unknown task")
	}
}

func TestRunQueuedSelectsNewTask(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{})
	m, cmd := applyMsg(t, m, runQueuedMsg{taskID: "fresh-task"})
	if m.taskID != "fresh-task" {
		t.Fatalf("taskID = %q, want fresh-task", m.taskID)
	}
	if cmd == nil {
		t.Fatal("queued run returned no poll cmds")
	}
	ids := m.store.History()
	if len(ids) == 0 || ids[0] != "fresh-task" {
		t.Fatalf("history = %v, want fresh-task first", ids)
	}
}

func TestConfirmPromptGatesDeleteLogs(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m, cmd := applyMsg(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if cmd != nil {
		t.Fatal("opening the confirm prompt issued a cmd")
	}
	if m.confirm == nil || m.confirm.kind != confirmDeleteLogs {
		t.Fatal("ctrl+d did not open the delete-logs prompt")
	}

	m, cmd = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.confirm != nil || cmd != nil {
		t.Fatal("declining did not dismiss the prompt")
	}

	m, _ = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	_, cmd = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("confirming delete-logs issued no cmd")
	}
}

func TestClearHistoryConfirmFlow(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m.historyStatuses["task-a"] = gateway.StatusRunning

	m, _ = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyCtrlK})
	if m.confirm == nil || m.confirm.kind != confirmClearHistory {
		t.Fatal("ctrl+k did not open the clear-history prompt")
	}

	m, _ = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if len(m.store.History()) != 0 {
		t.Fatalf("history = %v after clear", m.store.History())
	}
	if len(m.historyStatuses) != 0 {
		t.Fatal("cached history statuses survived the clear")
	}
}

func TestLaunchPromptValidatesConfigLocally(t *testing.T) {
	t.Parallel()

	configsDir := t.TempDir()
	writeFile(t, configsDir, "broken.yaml", "key: [unclosed\n")

	m := newTestModel(t, Options{ConfigsDir: configsDir, NodePath: "generation/core"})
	m.showLaunchPrompt = true
	m.configChoices = []string{"broken.yaml"}

	m, cmd := applyMsg(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("launch proceeded with a malformed config")
	}
	if !strings.Contains(m.actionErr, "Config rejected") {
		t.Fatalf("actionErr = %q", m.actionErr)
	}
	if !m.showLaunchPrompt {
		t.Fatal("prompt closed despite the rejected config")
	}
}

func TestLaunchPromptRequiresNodePath(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{ConfigsDir: t.TempDir()})
	m.showLaunchPrompt = true

	m, cmd := applyMsg(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.actionErr == "" {
		t.Fatalf("launch with empty node path: cmd=%v actionErr=%q", cmd, m.actionErr)
	}
}

func TestDeletedLogsResetCurrentTaskPane(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{InitialTaskID: "task-a"})
	m.setLogText("old content")

	m, _ = applyMsg(t, m, logsDeletedMsg{gen: m.taskGen, taskID: "task-a"})
	if m.logText != "" {
		t.Fatalf("logText = %q after deletion, want empty", m.logText)
	}

	// A deletion confirmed after the user switched tasks must not touch
	// the new task's pane.
	m.setLogText("new task content")
	m, _ = applyMsg(t, m, logsDeletedMsg{gen: m.taskGen - 1, taskID: "task-a"})
	if m.logText != "new task content" {
		t.Fatalf("logText = %q, want new task content retained", m.logText)
	}
}
