package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	inputCharLimit  = 4000
	maxLogLines     = 200
	timelineWrapMin = 24
)

type model struct {
	cfg    appConfig
	chat   *transcript
	client webhookClient

	statusLine string
	statusErr  bool
	logs       []string

	quitConfirm bool
	showHelp    bool

	width  int
	height int

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	theme uiTheme
}

// replyDoneMsg settles the single in-flight submission, whichever way the
// request ended.
type replyDoneMsg struct {
	reply string
	err   error
}

type uiTheme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	headerState lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	inputPanel  lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	localLabel  lipgloss.Style
	remoteLabel lipgloss.Style
	pendingText lipgloss.Style
	helpText    lipgloss.Style
}

func newTheme() uiTheme {
	teal := lipgloss.Color("#2dd4bf")
	amber := lipgloss.Color("#fbbf24")
	rose := lipgloss.Color("#fb7185")
	bg := lipgloss.Color("#101418")
	panelBg := lipgloss.Color("#1a2129")
	text := lipgloss.Color("#e6edf3")
	muted := lipgloss.Color("#8b98a5")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(0, 1),
		headerState: lipgloss.NewStyle().Foreground(amber).Bold(true),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Foreground(teal).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(teal).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(rose).Bold(true),
		localLabel:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		remoteLabel: lipgloss.NewStyle().Foreground(teal).Bold(true),
		pendingText: lipgloss.NewStyle().Foreground(muted).Italic(true),
		helpText:    lipgloss.NewStyle().Foreground(muted),
	}
}

func newModel(cfg appConfig) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = inputCharLimit
	input.Placeholder = "Type a message and press enter. /help for commands."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2dd4bf"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true
	timeline.MouseWheelDelta = 3

	return model{
		cfg:        cfg,
		chat:       newTranscript(),
		client:     newWebhookClient(cfg.WebhookURL, cfg.PayloadKey),
		statusLine: "ready",
		logs:       []string{},
		input:      input,
		timeline:   timeline,
		spinner:    sp,
		theme:      newTheme(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

func (m model) submitCmd(text string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		reply, err := client.send(text)
		return replyDoneMsg{reply: reply, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case replyDoneMsg:
		if msg.err != nil {
			m.chat.fail()
			m.notifyError(failureNotice(msg.err))
		} else {
			m.chat.resolve(msg.reply)
			m.notify("reply received")
		}
		m.renderTranscript()
		m.timeline.GotoBottom()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderTranscript()
		m.timeline.GotoBottom()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.chat.awaitingReply() {
			m.renderTranscript()
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		return m.updateKey(msg, cmds)
	}
	return m, tea.Batch(cmds...)
}

func (m model) updateKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.quitConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			return m, tea.Quit
		case "n", "N", "esc":
			m.quitConfirm = false
			m.notify("quit canceled")
		}
		return m, tea.Batch(cmds...)
	}
	if m.showHelp {
		switch msg.String() {
		case "esc", "q", "enter", "/":
			m.showHelp = false
		}
		return m, tea.Batch(cmds...)
	}

	switch msg.String() {
	case "esc":
		m.beginQuitConfirm()
		return m, tea.Batch(cmds...)
	case "enter":
		raw := m.input.Value()
		if strings.HasPrefix(strings.TrimSpace(raw), "/") {
			m.input.SetValue("")
			m.handleSlash(strings.TrimSpace(raw))
			return m, tea.Batch(cmds...)
		}
		text, ok := m.chat.begin(raw)
		if !ok {
			// Empty input or a submission already in flight; both are
			// silent no-ops.
			return m, tea.Batch(cmds...)
		}
		m.input.SetValue("")
		m.notify("waiting for reply...")
		m.renderTranscript()
		m.timeline.GotoBottom()
		cmds = append(cmds, m.submitCmd(text))
		return m, tea.Batch(cmds...)
	case "pgup", "ctrl+b":
		m.timeline.LineUp(8)
		return m, tea.Batch(cmds...)
	case "pgdown", "ctrl+f":
		m.timeline.LineDown(8)
		return m, tea.Batch(cmds...)
	case "up":
		if strings.TrimSpace(m.input.Value()) == "" {
			m.timeline.LineUp(4)
			return m, tea.Batch(cmds...)
		}
	case "down":
		if strings.TrimSpace(m.input.Value()) == "" {
			m.timeline.LineDown(4)
			return m, tea.Batch(cmds...)
		}
	case "home":
		m.timeline.GotoTop()
		return m, tea.Batch(cmds...)
	case "end":
		m.timeline.GotoBottom()
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) handleSlash(raw string) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return
	}
	switch parts[0] {
	case "/save":
		if m.chat.inFlight() {
			m.notifyError("cannot save while waiting for a reply")
			return
		}
		path := defaultExportPath(time.Now())
		if len(parts) > 1 {
			path = parts[1]
		}
		if err := saveTranscript(path, m.cfg.Title, m.chat.snapshot()); err != nil {
			m.notifyError("save failed: " + compactSingleLine(err.Error(), 120))
			return
		}
		m.notify("transcript saved to " + path)
	case "/clear":
		if m.chat.inFlight() {
			m.notifyError("cannot clear while waiting for a reply")
			return
		}
		m.chat.reset()
		m.renderTranscript()
		m.notify("transcript cleared")
	case "/help":
		m.showHelp = true
	case "/quit":
		m.beginQuitConfirm()
	default:
		m.notifyError("unknown command: " + parts[0])
	}
}

func (m *model) beginQuitConfirm() {
	m.quitConfirm = true
	if m.chat.inFlight() {
		m.statusLine = "a reply is still outstanding - quit anyway? (y/n)"
	} else {
		m.statusLine = "quit? (y/n)"
	}
	m.statusErr = false
}

func (m *model) notify(line string) {
	m.statusLine = line
	m.statusErr = false
	m.appendLog(line)
}

func (m *model) notifyError(line string) {
	m.statusLine = line
	m.statusErr = true
	m.appendLog(line)
}

func (m *model) appendLog(line string) {
	stamped := time.Now().Format("15:04:05") + " " + line
	m.logs = append(m.logs, stamped)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}

func (m *model) resize() {
	contentWidth := maxInt(40, m.width-4)
	m.input.Width = maxInt(20, contentWidth-6)
	m.timeline.Width = maxInt(30, contentWidth-2)
	// Header, input, and footer panels each take three rows with borders.
	m.timeline.Height = maxInt(5, m.height-11)
}

func (m *model) renderTranscript() {
	m.timeline.SetContent(m.transcriptView())
}

func (m *model) transcriptView() string {
	messages := m.chat.snapshot()
	if len(messages) == 0 {
		return "No messages yet. Type something and press enter."
	}
	wrapWidth := maxInt(timelineWrapMin, m.timeline.Width-2)
	var b strings.Builder
	for _, msg := range messages {
		if msg.isPlaceholder() {
			b.WriteString(m.spinner.View())
			b.WriteString(" ")
			b.WriteString(m.theme.pendingText.Render("typing..."))
			b.WriteString("\n\n")
			continue
		}
		label := "you"
		style := m.theme.localLabel
		if msg.Origin == originRemote {
			label = "bot"
			style = m.theme.remoteLabel
		}
		b.WriteString(style.Render(fmt.Sprintf("%s [%s]", msg.SentAt.Format("15:04:05"), label)))
		b.WriteString("\n")
		b.WriteString(wrapText(msg.Text, wrapWidth))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) View() string {
	header := m.renderHeader()
	var content string
	if m.showHelp {
		content = m.renderHelp()
	} else {
		content = m.theme.panel.
			Width(maxInt(40, m.width-4)).
			Render(m.theme.panelTitle.Render("Transcript") + "\n" + m.timeline.View())
	}
	input := m.theme.inputPanel.
		Width(maxInt(40, m.width-4)).
		Render(m.input.View())
	footer := m.renderFooter()
	out := lipgloss.JoinVertical(lipgloss.Left, header, content, input, footer)
	if m.quitConfirm {
		out = m.renderQuitModal()
	}
	return m.theme.root.Render(out)
}

func (m *model) renderHeader() string {
	state := m.chat.state.String()
	line := m.theme.panelTitle.Render(m.cfg.Title) +
		"  " + m.theme.headerState.Render(state) +
		"  " + m.theme.helpText.Render(fmt.Sprintf("messages=%d", m.chat.size()))
	return m.theme.header.Width(maxInt(40, m.width-4)).Render(line)
}

func (m *model) renderFooter() string {
	status := m.theme.status.Render(m.statusLine)
	if m.statusErr {
		status = m.theme.errorStatus.Render(m.statusLine)
	}
	keys := m.theme.helpText.Render("enter send | /help commands | esc quit")
	return m.theme.footer.Width(maxInt(40, m.width-4)).Render(status + "  " + keys)
}

func (m *model) renderHelp() string {
	lines := []string{
		m.theme.panelTitle.Render("Commands"),
		"",
		"/save [path]   write the transcript to a YAML or JSON file",
		"/clear         discard the transcript",
		"/help          this screen",
		"/quit          leave chatrelay",
		"",
		m.theme.panelTitle.Render("Keys"),
		"",
		"enter          send the typed message",
		"pgup/pgdown    scroll the transcript",
		"esc            quit prompt",
		"",
		m.theme.panelTitle.Render("Recent activity"),
		"",
	}
	start := maxInt(0, len(m.logs)-8)
	for _, line := range m.logs[start:] {
		lines = append(lines, m.theme.helpText.Render(line))
	}
	if len(m.logs) == 0 {
		lines = append(lines, m.theme.helpText.Render("nothing yet"))
	}
	lines = append(lines, "", m.theme.helpText.Render("esc to close"))
	return m.theme.panel.
		Width(maxInt(40, m.width-4)).
		Render(strings.Join(lines, "\n"))
}

func (m *model) renderQuitModal() string {
	body := m.theme.panelTitle.Render("Quit chatrelay?") + "\n\n" +
		m.statusLine + "\n\n" +
		m.theme.helpText.Render("y/enter quit | n/esc stay")
	panel := m.theme.panel.Width(minInt(60, maxInt(30, m.width-10))).Render(body)
	return lipgloss.Place(
		maxInt(32, m.width-2),
		maxInt(10, m.height-2),
		lipgloss.Center,
		lipgloss.Center,
		panel,
	)
}

func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var wrapped []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			wrapped = append(wrapped, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if len(current)+1+len(word) <= width {
				current += " " + word
				continue
			}
			wrapped = append(wrapped, current)
			current = word
		}
		wrapped = append(wrapped, current)
	}
	return strings.Join(wrapped, "\n")
}

func truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(text) <= limit {
		return text
	}
	if limit <= 3 {
		return text[:limit]
	}
	return text[:limit-3] + "..."
}

func compactSingleLine(text string, limit int) string {
	compact := strings.Join(strings.Fields(text), " ")
	return truncate(compact, limit)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
