package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"pipemon-tui/internal/gateway"
	"pipemon-tui/internal/history"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

type focusPane int

const (
	paneLogs focusPane = iota
	paneParams
	paneQueue
	paneHistory
)

type confirmKind int

const (
	confirmCancelTask confirmKind = iota
	confirmDeleteLogs
	confirmClearHistory
)

type confirmPrompt struct {
	kind   confirmKind
	taskID string
	body   string
}

// Options configures the monitor at startup.
type Options struct {
	// InitialTaskID selects a task to monitor immediately.
	InitialTaskID string
	// StateDir holds the history record and downloaded outputs.
	StateDir string
	// ConfigsDir is scanned for YAML configs by the launch prompt.
	ConfigsDir string
	// NodePath pre-fills the pipeline node path in the launch prompt.
	NodePath string
}

// Model is the monitor's event-loop state. All mutation happens on the
// single bubbletea goroutine; commands only perform I/O and report back
// through messages.
type Model struct {
	client *gateway.Client
	store  *history.Store
	opts   Options

	ready  bool
	width  int
	height int

	logsView    viewport.Model
	paramsView  viewport.Model
	historyView viewport.Model
	spin        spinner.Model

	focusPane focusPane
	showHelp  bool

	// Active task selection. taskGen grows every time a different id is
	// adopted; an in-flight result carrying an older generation is
	// discarded instead of being applied to the wrong task.
	taskID  string
	taskGen int64
	loading bool

	// Status channel. statusRev counts actual publishes; a poll that
	// changes nothing leaves it alone.
	status      gateway.Status
	progress    float64
	hasProgress bool
	message     string
	details     map[string]any
	detailsKey  string
	statusErr   string
	statusRev   int

	// Parameters are fetched once per selection.
	parameters        map[string]any
	parametersKnown   bool
	parametersMissing bool

	logText        string
	logWarn        string
	logsRev        int
	logsAutoFollow bool

	pending     []string
	scheduled   []string
	queueKey    string
	queueErr    string
	queueRev    int
	queueCursor int

	// Best-known status per history id, cached separately from the
	// active task's live status.
	historyStatuses map[string]gateway.Status
	historyRev      int
	historyCursor   int

	actionErr  string
	statusText string

	confirm *confirmPrompt

	showLaunchPrompt bool
	nodeInput        textinput.Model
	configChoices    []string
	configCursor     int
	watcher          *fsnotify.Watcher
	watchGen         int64

	logsPanelW    int
	logsPanelH    int
	paramsPanelW  int
	paramsPanelH  int
	historyPanelH int
}

func NewModel(client *gateway.Client, store *history.Store, opts Options) Model {
	logsView := viewport.New(64, 14)
	logsView.SetContent(logsEmptyText)

	paramsView := viewport.New(44, 14)
	paramsView.SetContent("No parameters loaded.")

	historyView := viewport.New(44, 6)

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(accentSecondary)

	nodeInput := textinput.New()
	nodeInput.Prompt = "> "
	nodeInput.Placeholder = "generation/core_pipeline"
	nodeInput.CharLimit = 512
	nodeInput.Width = 48
	nodeInput.SetValue(strings.TrimSpace(opts.NodePath))

	m := Model{
		client:          client,
		store:           store,
		opts:            opts,
		logsView:        logsView,
		paramsView:      paramsView,
		historyView:     historyView,
		spin:            spin,
		nodeInput:       nodeInput,
		focusPane:       paneLogs,
		showHelp:        true,
		logsAutoFollow:  true,
		historyStatuses: map[string]gateway.Status{},
		statusText:      "No task selected. Press ctrl+r to launch a pipeline.",
		logsPanelW:      68,
		logsPanelH:      16,
		paramsPanelW:    48,
		paramsPanelH:    16,
		historyPanelH:   6,
	}

	if id := strings.TrimSpace(opts.InitialTaskID); id != "" {
		m.taskID = id
		m.taskGen = 1
		m.loading = true
		m.statusText = "Monitoring task " + shortTaskID(id)
		if m.store != nil {
			m.store.AddTask(id)
		}
	}
	m.refreshHistoryView()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		fetchQueueCmd(m.client),
		queueTickCmd(),
		historyTickCmd(),
	}
	if refresh := refreshHistoryStatusesCmd(m.client, m.pendingHistoryIDs()); refresh != nil {
		cmds = append(cmds, refresh)
	}
	if m.taskID != "" {
		cmds = append(cmds,
			fetchStatusCmd(m.client, m.taskID, m.taskGen),
			fetchParametersCmd(m.client, m.taskID, m.taskGen),
			fetchLogsCmd(m.client, m.taskID, m.taskGen),
			statusTickCmd(m.taskGen),
			logsTickCmd(m.taskGen),
			m.spin.Tick,
		)
	}
	return tea.Batch(cmds...)
}

// pollingActive gates the status and log pollers: a selected task that has
// not reached a terminal status keeps both chains alive.
func (m Model) pollingActive() bool {
	return m.taskID != "" && !m.status.Terminal()
}

// selectTask is the single mutation path for the active task identity.
// Selecting the already-active id is a no-op so unrelated events never
// restart the pollers.
func (m *Model) selectTask(taskID string) tea.Cmd {
	taskID = strings.TrimSpace(taskID)
	if taskID == m.taskID {
		return nil
	}

	m.taskID = taskID
	m.taskGen++
	m.resetTaskState()

	if taskID == "" {
		m.statusText = "No task selected. Press ctrl+r to launch a pipeline."
		return nil
	}

	m.loading = true
	if m.store != nil {
		m.store.AddTask(taskID)
		m.historyCursor = 0
		m.refreshHistoryView()
	}
	m.statusText = "Monitoring task " + shortTaskID(taskID)

	gen := m.taskGen
	return tea.Batch(
		fetchStatusCmd(m.client, taskID, gen),
		fetchParametersCmd(m.client, taskID, gen),
		fetchLogsCmd(m.client, taskID, gen),
		statusTickCmd(gen),
		logsTickCmd(gen),
		m.spin.Tick,
	)
}

// resetTaskState clears every per-task channel before the first fetch for a
// newly adopted id. Skipping this is how stale progress bars happen.
func (m *Model) resetTaskState() {
	m.loading = false
	m.status = ""
	m.progress = 0
	m.hasProgress = false
	m.message = ""
	m.details = nil
	m.detailsKey = ""
	m.statusErr = ""
	m.parameters = nil
	m.parametersKnown = false
	m.parametersMissing = false
	m.logText = ""
	m.logWarn = ""
	m.actionErr = ""
	m.logsAutoFollow = true
	m.logsView.SetContent(logsEmptyText)
	m.logsView.SetYOffset(0)
	m.paramsView.SetContent("No parameters loaded.")
	m.paramsView.SetYOffset(0)
}

func (m *Model) setLogText(text string) {
	m.logText = text
	m.logsRev++
	if strings.TrimSpace(text) == "" {
		m.logsView.SetContent(logsEmptyText)
		m.logsView.SetYOffset(0)
		return
	}
	m.logsView.SetContent(text)
	if m.logsAutoFollow {
		m.logsView.GotoBottom()
	}
}

func (m *Model) applyStatusReply(reply gateway.StatusReply) {
	changed := false
	if !reply.Found {
		if m.status != gateway.StatusNotFound {
			m.status = gateway.StatusNotFound
			m.message = fmt.Sprintf("Task %s not found.", m.taskID)
			changed = true
		}
	} else {
		if reply.Status != m.status {
			m.status = reply.Status
			changed = true
		}
		if reply.HasProgress && (!m.hasProgress || reply.Progress != m.progress) {
			m.progress = clampFloat(reply.Progress, 0, 1)
			m.hasProgress = true
			changed = true
		}
		if reply.Message != m.message {
			m.message = reply.Message
			changed = true
		}
		if key := serializeDetails(reply.Details); key != m.detailsKey {
			m.detailsKey = key
			m.details = reply.Details
			changed = true
		}
	}
	if !changed {
		return
	}
	m.statusRev++
	if m.taskID != "" {
		m.historyStatuses[m.taskID] = m.status
		m.historyRev++
		m.refreshHistoryView()
	}
	if m.status.Terminal() {
		m.statusText = fmt.Sprintf("Task %s %s", shortTaskID(m.taskID), strings.ToLower(string(m.status)))
	}
}

func (m *Model) applyQueueReply(reply gateway.QueueReply) {
	key := serializeQueue(reply.PendingTasks, reply.ScheduledTasks)
	if key == m.queueKey {
		return
	}
	m.queueKey = key
	m.pending = reply.PendingTasks
	m.scheduled = reply.ScheduledTasks
	m.queueRev++
	m.queueCursor = clampInt(m.queueCursor, 0, maxInt(0, len(m.queueItems())-1))
}

func (m *Model) mergeHistoryStatuses(statuses map[string]gateway.Status) {
	changed := false
	for taskID, status := range statuses {
		if m.historyStatuses[taskID] != status {
			m.historyStatuses[taskID] = status
			changed = true
		}
	}
	if changed {
		m.historyRev++
		m.refreshHistoryView()
	}
}

// pendingHistoryIDs picks the history ids still worth refreshing: those
// with no cached status or a non-terminal one. Terminal ids are skipped so
// request volume stays bounded as history grows.
func (m Model) pendingHistoryIDs() []string {
	if m.store == nil {
		return nil
	}
	var ids []string
	for _, taskID := range m.store.History() {
		if status, ok := m.historyStatuses[taskID]; ok && status.Terminal() {
			continue
		}
		ids = append(ids, taskID)
	}
	return ids
}

type queueItem struct {
	taskID    string
	scheduled bool
}

func (m Model) queueItems() []queueItem {
	items := make([]queueItem, 0, len(m.pending)+len(m.scheduled))
	for _, taskID := range m.pending {
		items = append(items, queueItem{taskID: taskID})
	}
	for _, taskID := range m.scheduled {
		items = append(items, queueItem{taskID: taskID, scheduled: true})
	}
	return items
}

func (m Model) queueSelectedID() string {
	items := m.queueItems()
	if len(items) == 0 {
		return ""
	}
	return items[clampInt(m.queueCursor, 0, len(items)-1)].taskID
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanels()
		m.refreshHistoryView()
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.pollingActive() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case statusTickMsg:
		if msg.gen != m.taskGen || !m.pollingActive() {
			return m, nil
		}
		return m, tea.Batch(
			fetchStatusCmd(m.client, m.taskID, msg.gen),
			statusTickCmd(msg.gen),
		)

	case logsTickMsg:
		if msg.gen != m.taskGen || !m.pollingActive() {
			return m, nil
		}
		return m, tea.Batch(
			fetchLogsCmd(m.client, m.taskID, msg.gen),
			logsTickCmd(msg.gen),
		)

	case queueTickMsg:
		return m, tea.Batch(fetchQueueCmd(m.client), queueTickCmd())

	case historyTickMsg:
		cmds := []tea.Cmd{historyTickCmd()}
		if refresh := refreshHistoryStatusesCmd(m.client, m.pendingHistoryIDs()); refresh != nil {
			cmds = append(cmds, refresh)
		}
		return m, tea.Batch(cmds...)

	case statusFetchedMsg:
		if msg.gen != m.taskGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.statusErr = "Status poll failed: " + msg.err.Error()
			return m, nil
		}
		m.statusErr = ""
		m.applyStatusReply(msg.reply)
		return m, nil

	case paramsFetchedMsg:
		if msg.gen != m.taskGen {
			return m, nil
		}
		if msg.err != nil {
			m.actionErr = "Failed to fetch parameters: " + msg.err.Error()
			return m, nil
		}
		m.parametersKnown = true
		if !msg.reply.Found {
			m.parametersMissing = true
			m.paramsView.SetContent("Parameters expired or were never stored.")
			return m, nil
		}
		m.parameters = msg.reply.Parameters
		m.paramsView.SetContent(renderParameters(msg.reply.Parameters, m.paramsView.Width))
		m.paramsView.SetYOffset(0)
		return m, nil

	case logsFetchedMsg:
		if msg.gen != m.taskGen {
			return m, nil
		}
		if msg.err != nil {
			m.logWarn = "Log fetch failed: " + msg.err.Error()
			return m, nil
		}
		m.logWarn = ""
		if !msg.reply.Found {
			// Placeholder only replaces the empty/initial states. Text
			// the user has already seen stays up if the log file
			// disappears server-side mid-session.
			if m.logText == "" {
				m.setLogText(logsPlaceholder)
			}
			return m, nil
		}
		if msg.reply.Logs != m.logText {
			m.setLogText(msg.reply.Logs)
		}
		return m, nil

	case queueFetchedMsg:
		if msg.err != nil {
			m.queueErr = "Failed to fetch queue: " + msg.err.Error()
			return m, nil
		}
		m.queueErr = ""
		m.applyQueueReply(msg.reply)
		return m, nil

	case historyStatusesMsg:
		m.mergeHistoryStatuses(msg.statuses)
		return m, nil

	case interruptDoneMsg:
		if msg.err != nil {
			m.actionErr = fmt.Sprintf("Failed to cancel task %s: %v", shortTaskID(msg.taskID), msg.err)
			return m, nil
		}
		m.actionErr = ""
		m.statusText = fmt.Sprintf("Cancellation requested for %s", shortTaskID(msg.taskID))
		cmds := []tea.Cmd{fetchQueueCmd(m.client)}
		if msg.taskID == m.taskID && m.taskID != "" {
			cmds = append(cmds, fetchStatusCmd(m.client, m.taskID, m.taskGen))
		}
		return m, tea.Batch(cmds...)

	case logsDeletedMsg:
		if msg.err != nil {
			m.actionErr = fmt.Sprintf("Failed to delete logs for %s: %v", shortTaskID(msg.taskID), msg.err)
			return m, nil
		}
		m.actionErr = ""
		m.statusText = "Logs deleted for " + shortTaskID(msg.taskID)
		if msg.gen == m.taskGen {
			m.setLogText("")
		}
		return m, nil

	case outputSavedMsg:
		if msg.err != nil {
			m.actionErr = fmt.Sprintf("Download failed for %s: %v", shortTaskID(msg.taskID), msg.err)
			return m, nil
		}
		m.actionErr = ""
		if msg.notFound {
			m.statusText = fmt.Sprintf("No output available for task %s yet.", shortTaskID(msg.taskID))
			return m, nil
		}
		m.statusText = "Saved output to " + msg.path
		return m, nil

	case runQueuedMsg:
		if msg.err != nil {
			m.actionErr = "Pipeline launch failed: " + msg.err.Error()
			return m, nil
		}
		m.actionErr = ""
		m.statusText = fmt.Sprintf("Pipeline queued as task %s", shortTaskID(msg.taskID))
		return m, tea.Batch(m.selectTask(msg.taskID), fetchQueueCmd(m.client))

	case configListMsg:
		if msg.err != nil {
			m.configChoices = nil
			m.configCursor = 0
			return m, nil
		}
		m.configChoices = msg.files
		m.configCursor = clampInt(m.configCursor, 0, maxInt(0, len(m.configChoices)-1))
		return m, nil

	case configEventMsg:
		if msg.watchGen != m.watchGen || !msg.ok || m.watcher == nil {
			return m, nil
		}
		return m, tea.Batch(
			listConfigsCmd(m.opts.ConfigsDir),
			waitForConfigEventCmd(msg.watchGen, m.watcher),
		)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		switch m.focusPane {
		case paneLogs:
			var cmd tea.Cmd
			m.logsView, cmd = m.logsView.Update(msg)
			m.logsAutoFollow = m.logsView.AtBottom()
			return m, cmd
		case paneParams:
			var cmd tea.Cmd
			m.paramsView, cmd = m.paramsView.Update(msg)
			return m, cmd
		case paneHistory:
			var cmd tea.Cmd
			m.historyView, cmd = m.historyView.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}
	if m.showLaunchPrompt {
		return m.handleLaunchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.stopConfigWatch()
		return m, tea.Quit

	case "tab":
		m.focusPane = nextFocusPane(m.focusPane)
		m.statusText = "Focus: " + focusPaneLabel(m.focusPane)
		return m, nil

	case "shift+tab":
		m.focusPane = prevFocusPane(m.focusPane)
		m.statusText = "Focus: " + focusPaneLabel(m.focusPane)
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+r":
		m.showLaunchPrompt = true
		m.nodeInput.Focus()
		m.nodeInput.CursorEnd()
		m.statusText = "Pick a config with up/down, type the node path, press Enter."
		return m, tea.Batch(listConfigsCmd(m.opts.ConfigsDir), m.startConfigWatch(), textinput.Blink)

	case "ctrl+x":
		if m.focusPane == paneQueue {
			taskID := m.queueSelectedID()
			if taskID == "" {
				m.actionErr = "The queue is empty."
				return m, nil
			}
			m.confirm = &confirmPrompt{
				kind:   confirmCancelTask,
				taskID: taskID,
				body:   fmt.Sprintf("Revoke queued task %s?", taskID),
			}
			return m, nil
		}
		if m.taskID == "" {
			m.actionErr = "No task selected to cancel."
			return m, nil
		}
		if m.status.Terminal() {
			m.actionErr = fmt.Sprintf("Task %s already finished.", shortTaskID(m.taskID))
			return m, nil
		}
		verb := "Cancel running"
		if m.status == gateway.StatusPending {
			verb = "Revoke pending"
		}
		m.confirm = &confirmPrompt{
			kind:   confirmCancelTask,
			taskID: m.taskID,
			body:   fmt.Sprintf("%s task %s?", verb, m.taskID),
		}
		return m, nil

	case "ctrl+d":
		if m.taskID == "" {
			m.actionErr = "No task selected."
			return m, nil
		}
		m.confirm = &confirmPrompt{
			kind:   confirmDeleteLogs,
			taskID: m.taskID,
			body:   fmt.Sprintf("Delete the logs for task %s? This cannot be undone.", m.taskID),
		}
		return m, nil

	case "ctrl+s":
		if m.taskID == "" {
			m.actionErr = "No task selected."
			return m, nil
		}
		m.statusText = "Downloading output for " + shortTaskID(m.taskID)
		return m, saveOutputCmd(m.client, m.taskID, filepath.Join(m.opts.StateDir, "outputs"))

	case "ctrl+k":
		if m.store == nil || len(m.store.History()) == 0 {
			return m, nil
		}
		m.confirm = &confirmPrompt{
			kind: confirmClearHistory,
			body: "Clear the task history? This cannot be undone.",
		}
		return m, nil

	case "enter":
		switch m.focusPane {
		case paneHistory:
			if m.store == nil {
				return m, nil
			}
			ids := m.store.History()
			if len(ids) == 0 {
				return m, nil
			}
			return m, m.selectTask(ids[clampInt(m.historyCursor, 0, len(ids)-1)])
		case paneQueue:
			if taskID := m.queueSelectedID(); taskID != "" {
				return m, m.selectTask(taskID)
			}
		}
		return m, nil

	case "up", "k":
		switch m.focusPane {
		case paneHistory:
			m.historyCursor = maxInt(0, m.historyCursor-1)
			m.refreshHistoryView()
			return m, nil
		case paneQueue:
			m.queueCursor = maxInt(0, m.queueCursor-1)
			return m, nil
		}

	case "down", "j":
		switch m.focusPane {
		case paneHistory:
			if m.store != nil {
				m.historyCursor = clampInt(m.historyCursor+1, 0, maxInt(0, len(m.store.History())-1))
				m.refreshHistoryView()
			}
			return m, nil
		case paneQueue:
			m.queueCursor = clampInt(m.queueCursor+1, 0, maxInt(0, len(m.queueItems())-1))
			return m, nil
		}
	}

	switch m.focusPane {
	case paneLogs:
		var cmd tea.Cmd
		m.logsView, cmd = m.logsView.Update(msg)
		m.logsAutoFollow = m.logsView.AtBottom()
		return m, cmd
	case paneParams:
		var cmd tea.Cmd
		m.paramsView, cmd = m.paramsView.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		prompt := *m.confirm
		m.confirm = nil
		switch prompt.kind {
		case confirmCancelTask:
			m.statusText = "Cancelling task " + shortTaskID(prompt.taskID)
			return m, interruptCmd(m.client, prompt.taskID)
		case confirmDeleteLogs:
			return m, deleteLogsCmd(m.client, prompt.taskID, m.taskGen)
		case confirmClearHistory:
			m.store.ClearHistory()
			m.historyStatuses = map[string]gateway.Status{}
			m.historyCursor = 0
			m.historyRev++
			m.refreshHistoryView()
			m.statusText = "Task history cleared."
			return m, nil
		}
		return m, nil
	case "n", "esc", "q":
		m.confirm = nil
		m.statusText = "Action cancelled."
		return m, nil
	}
	return m, nil
}

func (m Model) handleLaunchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.stopConfigWatch()
		return m, tea.Quit
	case "esc":
		m.showLaunchPrompt = false
		m.nodeInput.Blur()
		m.stopConfigWatch()
		m.statusText = "Launch cancelled."
		return m, nil
	case "up":
		m.configCursor = maxInt(0, m.configCursor-1)
		return m, nil
	case "down":
		m.configCursor = clampInt(m.configCursor+1, 0, maxInt(0, len(m.configChoices)-1))
		return m, nil
	case "enter":
		nodePath := strings.TrimSpace(m.nodeInput.Value())
		if nodePath == "" {
			m.actionErr = "Pipeline node path is required."
			return m, nil
		}
		configPath := ""
		if len(m.configChoices) > 0 {
			name := m.configChoices[clampInt(m.configCursor, 0, len(m.configChoices)-1)]
			configPath = filepath.Join(m.opts.ConfigsDir, name)
			// Catch malformed YAML locally instead of burning a queue
			// slot on a run the server will reject.
			if _, _, err := LoadConfigFile(configPath); err != nil {
				m.actionErr = "Config rejected: " + err.Error()
				return m, nil
			}
		}
		m.showLaunchPrompt = false
		m.nodeInput.Blur()
		m.stopConfigWatch()
		m.actionErr = ""
		m.statusText = "Queueing pipeline run..."
		return m, runPipelineCmd(m.client, gateway.RunRequest{
			NodePath:   nodePath,
			ConfigPath: configPath,
		})
	}

	var cmd tea.Cmd
	m.nodeInput, cmd = m.nodeInput.Update(msg)
	return m, cmd
}

func nextFocusPane(current focusPane) focusPane {
	switch current {
	case paneLogs:
		return paneParams
	case paneParams:
		return paneQueue
	case paneQueue:
		return paneHistory
	default:
		return paneLogs
	}
}

func prevFocusPane(current focusPane) focusPane {
	switch current {
	case paneLogs:
		return paneHistory
	case paneParams:
		return paneLogs
	case paneQueue:
		return paneParams
	default:
		return paneQueue
	}
}

func focusPaneLabel(pane focusPane) string {
	switch pane {
	case paneLogs:
		return "logs"
	case paneParams:
		return "parameters"
	case paneQueue:
		return "queue"
	case paneHistory:
		return "history"
	default:
		return "unknown"
	}
}
