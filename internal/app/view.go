package app

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"pipemon-tui/internal/gateway"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	chromeBG        = lipgloss.Color("#05090C")
	panelBorder     = lipgloss.Color("#2D6A80")
	accentPrimary   = lipgloss.Color("#50E3C2")
	accentSecondary = lipgloss.Color("#F6AE2D")
	mutedText       = lipgloss.Color("#8CA1AE")
	warningText     = lipgloss.Color("#FF6B6B")
	successText     = lipgloss.Color("#44E7AE")
	progressFillBG  = lipgloss.Color("#13232C")
)

var (
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(accentPrimary)

	statusStyle = lipgloss.NewStyle().
			Foreground(accentSecondary).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(warningText).
			Bold(true)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(accentPrimary).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedText)

	historySelectedLineStyle = lipgloss.NewStyle().
					Foreground(accentPrimary).
					Bold(true)

	queueChipStyle = lipgloss.NewStyle().
			Foreground(accentSecondary)
)

func statusColor(status gateway.Status) lipgloss.Color {
	switch status {
	case gateway.StatusCompleted:
		return successText
	case gateway.StatusFailed, gateway.StatusError:
		return warningText
	case gateway.StatusRevoked, gateway.StatusNotFound:
		return mutedText
	case gateway.StatusRunning:
		return accentPrimary
	default:
		return accentSecondary
	}
}

func statusGlyph(status gateway.Status) string {
	switch status {
	case gateway.StatusCompleted:
		return "✓"
	case gateway.StatusFailed, gateway.StatusError:
		return "✗"
	case gateway.StatusRevoked:
		return "⊘"
	case gateway.StatusNotFound:
		return "?"
	case gateway.StatusRunning:
		return "▶"
	case gateway.StatusPending:
		return "…"
	default:
		return "·"
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Booting pipemon-tui..."
	}

	innerWidth := maxInt(40, m.width-2)
	innerHeight := maxInt(12, m.height-2)

	header := headerStyle.Render("Pipeline Monitor")

	statusPrefix := "*"
	if m.loading || m.pollingActive() {
		statusPrefix = m.spin.View()
	}
	statusBody := strings.TrimSpace(m.statusText)
	if statusBody == "" {
		statusBody = "Ready"
	}
	statusLine := statusStyle.Render(statusPrefix + " " + statusBody)
	for _, errText := range []string{m.actionErr, m.statusErr, m.queueErr, m.logWarn} {
		if strings.TrimSpace(errText) != "" {
			statusLine = errorStyle.Render(errText)
			break
		}
	}

	taskPanel := renderPanel(
		"Task",
		m.renderTaskSummary(innerWidth-4),
		innerWidth-2,
		taskPanelHeight,
		false,
	)
	logsPanel := renderPanel(
		"Logs",
		m.logsView.View(),
		m.logsPanelW,
		m.logsPanelH,
		m.focusPane == paneLogs,
	)
	paramsPanel := renderPanel(
		"Parameters",
		m.paramsView.View(),
		m.paramsPanelW,
		m.paramsPanelH,
		m.focusPane == paneParams,
	)
	queuePanel := renderPanel(
		"Queue",
		m.renderQueue(m.logsPanelW-2),
		m.logsPanelW,
		m.historyPanelH,
		m.focusPane == paneQueue,
	)
	historyPanel := renderPanel(
		"Task History",
		m.historyView.View(),
		m.paramsPanelW,
		m.historyPanelH,
		m.focusPane == paneHistory,
	)

	middleRow := lipgloss.JoinHorizontal(lipgloss.Top, logsPanel, paramsPanel)
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, queuePanel, historyPanel)

	parts := []string{header, statusLine}
	if m.confirm != nil {
		promptWidth := clampInt(innerWidth-4, 42, 80)
		promptBody := strings.Join([]string{
			m.confirm.body,
			"",
			"y/enter confirm | n/esc cancel",
		}, "\n")
		parts = append(parts, renderPanel("Confirm", promptBody, promptWidth, 5, true))
	}
	if m.showLaunchPrompt {
		promptWidth := clampInt(innerWidth-4, 42, 90)
		listRows := minInt(maxInt(1, len(m.configChoices)), 8)
		promptBody := strings.Join([]string{
			"Pipeline node path:",
			m.nodeInput.View(),
			"",
			"Configs in " + m.opts.ConfigsDir + ":",
			m.renderConfigChoices(listRows),
			"",
			"up/down select | enter launch | esc cancel",
		}, "\n")
		parts = append(parts, renderPanel("Launch Pipeline", promptBody, promptWidth, 9+listRows, true))
	}
	parts = append(parts, taskPanel, middleRow, bottomRow)
	if m.showHelp {
		parts = append(parts, helpStyle.Render("ctrl+r launch | ctrl+x cancel task | ctrl+d delete logs | ctrl+s save output | ctrl+k clear history | tab cycle panes | enter select | q quit"))
	}

	body := strings.Join(parts, "\n")
	body = fitTextHeight(body, innerHeight)
	return lipgloss.NewStyle().
		Background(chromeBG).
		Foreground(lipgloss.Color("#E8F0F2")).
		Width(innerWidth).
		Height(innerHeight).
		Padding(0, 1).
		Render(body)
}

const taskPanelHeight = 5

func (m Model) renderTaskSummary(width int) string {
	if m.taskID == "" {
		return mutedStyle.Render("No task selected. Pick one from the queue or history, or press ctrl+r.")
	}

	statusLabel := string(m.status)
	if statusLabel == "" {
		statusLabel = "LOADING"
	}
	statusText := lipgloss.NewStyle().Foreground(statusColor(m.status)).Bold(true).
		Render(statusGlyph(m.status) + " " + statusLabel)

	lines := []string{
		truncateText("id: "+m.taskID, width),
		statusText,
	}
	if m.hasProgress {
		lines = append(lines, renderProgressBar(m.progress, minInt(width, 52), statusColor(m.status)))
	}
	if msg := strings.TrimSpace(m.message); msg != "" {
		lines = append(lines, truncateText(msg, width))
	}
	if detail := summarizeDetails(m.details, width); detail != "" {
		lines = append(lines, mutedStyle.Render(detail))
	}
	return strings.Join(lines, "\n")
}

func renderProgressBar(progress float64, width int, color lipgloss.Color) string {
	width = maxInt(10, width-8)
	progress = clampFloat(progress, 0, 1)
	filled := int(math.Round(progress * float64(width)))
	filled = clampInt(filled, 0, width)

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(progressFillBG).Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, progress*100)
}

func (m Model) renderQueue(width int) string {
	items := m.queueItems()
	if len(items) == 0 {
		return mutedStyle.Render("The queue is empty.")
	}

	rows := make([]string, 0, len(items))
	for i, item := range items {
		marker := "  "
		if m.focusPane == paneQueue && i == clampInt(m.queueCursor, 0, len(items)-1) {
			marker = "> "
		}
		line := marker + shortTaskID(item.taskID)
		if item.scheduled {
			line += " " + queueChipStyle.Render("[scheduled]")
		}
		if item.taskID == m.taskID {
			line += " " + mutedStyle.Render("(watching)")
		}
		line = truncateText(line, width)
		if marker == "> " {
			line = historySelectedLineStyle.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func (m *Model) refreshHistoryView() {
	if m.store == nil {
		m.historyView.SetContent(mutedStyle.Render("History unavailable."))
		return
	}
	ids := m.store.History()
	if len(ids) == 0 {
		m.historyView.SetContent(mutedStyle.Render("No tasks launched yet."))
		return
	}

	m.historyCursor = clampInt(m.historyCursor, 0, len(ids)-1)
	lines := make([]string, 0, len(ids))
	for i, taskID := range ids {
		status := m.historyStatuses[taskID]
		glyph := lipgloss.NewStyle().Foreground(statusColor(status)).Render(statusGlyph(status))
		label := shortTaskID(taskID)
		if status != "" {
			label += " " + mutedStyle.Render(strings.ToLower(string(status)))
		}
		line := "  " + glyph + " " + label
		if i == m.historyCursor {
			line = historySelectedLineStyle.Render("> " + glyph + " " + label)
		}
		lines = append(lines, line)
	}
	m.historyView.SetContent(strings.Join(lines, "\n"))

	// Keep the cursor row inside the visible window.
	top := m.historyView.YOffset
	bottom := top + m.historyView.Height - 1
	if m.historyCursor < top {
		m.historyView.SetYOffset(m.historyCursor)
	} else if m.historyCursor > bottom {
		m.historyView.SetYOffset(m.historyCursor - m.historyView.Height + 1)
	}
}

func (m Model) renderConfigChoices(rows int) string {
	if len(m.configChoices) == 0 {
		return mutedStyle.Render("  (no .yaml files found)")
	}

	cursor := clampInt(m.configCursor, 0, len(m.configChoices)-1)
	start := clampInt(cursor-rows/2, 0, maxInt(0, len(m.configChoices)-rows))
	end := minInt(start+rows, len(m.configChoices))

	lines := make([]string, 0, rows)
	for i := start; i < end; i++ {
		if i == cursor {
			lines = append(lines, historySelectedLineStyle.Render("> "+m.configChoices[i]))
			continue
		}
		lines = append(lines, "  "+m.configChoices[i])
	}
	return strings.Join(lines, "\n")
}

// renderParameters formats the launch parameters as YAML with stable key
// order and wraps long values to the pane width.
func renderParameters(params map[string]any, width int) string {
	if len(params) == 0 {
		return "No parameters were recorded for this task."
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ordered := yaml.Node{Kind: yaml.MappingNode}
	for _, key := range keys {
		var value yaml.Node
		if err := value.Encode(params[key]); err != nil {
			value = yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%v", params[key])}
		}
		ordered.Content = append(ordered.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&value,
		)
	}

	blob, err := yaml.Marshal(&ordered)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}

	width = maxInt(20, width)
	var out []string
	for _, line := range strings.Split(strings.TrimRight(string(blob), "\n"), "\n") {
		out = append(out, wrapLineToWidth(line, width)...)
	}
	return strings.Join(out, "\n")
}

func renderPanel(title, body string, width, height int, focused bool) string {
	borderColor := panelBorder
	if focused {
		borderColor = accentSecondary
	}
	style := panelStyle.
		BorderForeground(borderColor).
		Width(width).
		Height(height)

	titleLine := panelTitleStyle.Render(title)
	return style.Render(titleLine + "\n" + body)
}

func (m *Model) resizePanels() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	usableW := maxInt(40, m.width-6)
	innerH := maxInt(12, m.height-2)

	verticalOverhead := 2 + (taskPanelHeight + 2)
	if m.showHelp {
		verticalOverhead += 2
	}
	panelRowsBudget := maxInt(10, innerH-verticalOverhead)

	bottomH := clampInt(int(math.Round(float64(panelRowsBudget)*0.3)), 4, 10)
	middleH := maxInt(6, panelRowsBudget-bottomH-4)

	leftW := int(math.Round(float64(usableW) * 0.58))
	leftW = clampInt(leftW, 30, usableW-24)
	rightW := usableW - leftW

	m.logsPanelW = leftW
	m.logsPanelH = middleH
	m.paramsPanelW = rightW
	m.paramsPanelH = middleH
	m.historyPanelH = bottomH

	m.logsView.Width = maxInt(10, leftW-2)
	m.logsView.Height = maxInt(3, middleH-1)
	m.paramsView.Width = maxInt(10, rightW-2)
	m.paramsView.Height = maxInt(3, middleH-1)
	m.historyView.Width = maxInt(10, rightW-2)
	m.historyView.Height = maxInt(2, bottomH-1)

	if m.logsAutoFollow {
		m.logsView.GotoBottom()
	}
	if len(m.parameters) > 0 {
		m.paramsView.SetContent(renderParameters(m.parameters, m.paramsView.Width))
	}
}

func fitTextHeight(text string, height int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= height {
		return text
	}
	return strings.Join(lines[:height], "\n")
}
