package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	connectordto "meetnote/internal/modules/connector/dto"
	meetingdto "meetnote/internal/modules/meeting/dto"
	summarydto "meetnote/internal/modules/summary/dto"
	apperrors "meetnote/internal/platform/errors"
	"meetnote/internal/platform/notify"
	"meetnote/internal/ui/components"
	"meetnote/internal/ui/theme"
	dashboardview "meetnote/internal/ui/views/dashboard"
	historyview "meetnote/internal/ui/views/history"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type connectorPort interface {
	Connect(ctx context.Context, platform string) (connectordto.ConnectOutput, error)
	Disconnect(ctx context.Context, platform string) error
	SeedDemo(ctx context.Context) error
	Platforms(ctx context.Context) ([]connectordto.PlatformOutput, error)
}

type meetingPort interface {
	Start(ctx context.Context, platform string) (meetingdto.StartOutput, error)
	End(ctx context.Context, meetingID string) (meetingdto.EndOutput, error)
	Cancel(ctx context.Context, meetingID string) (meetingdto.MeetingOutput, error)
	Active(ctx context.Context) ([]meetingdto.MeetingOutput, error)
	History(ctx context.Context) ([]meetingdto.MeetingOutput, error)
	Stats(ctx context.Context) (meetingdto.StatsOutput, error)
}

type summaryPort interface {
	Preview(ctx context.Context, title string) (summarydto.PreviewOutput, error)
}

// ─── events ──────────────────────────────────────────────────────────────────

const eventBuffer = 64

// Events is a notifier that hands events to the running program. Events
// arriving while the buffer is full are dropped.
type Events struct {
	ch chan notify.Event
}

func NewEvents() *Events {
	return &Events{ch: make(chan notify.Event, eventBuffer)}
}

func (e *Events) Notify(_ context.Context, event notify.Event) {
	select {
	case e.ch <- event:
	default:
	}
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabDashboard tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Dashboard", "History"}

// ─── async messages ──────────────────────────────────────────────────────────

type eventMsg notify.Event

type snapshotMsg struct {
	snapshot dashboardview.Snapshot
	history  []meetingdto.MeetingOutput
	err      error
}

type actionDoneMsg struct {
	status string
	err    error
}

type previewMsg struct {
	out summarydto.PreviewOutput
	err error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Connect key.Binding
	Drop    key.Binding
	Start   key.Binding
	End     key.Binding
	Cancel  key.Binding
	Preview key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Connect: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect platform")),
		Drop:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "disconnect")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start meeting")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end oldest meeting")),
		Cancel:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel oldest meeting")),
		Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview summary")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Connect, k.Drop},
		{k.Start, k.End, k.Cancel, k.Preview},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the toast line,
// the help overlay and the command palette. Every state change arrives as a
// notifier event, after which the model reloads a snapshot through its ports.
type Model struct {
	connector connectorPort
	meetings  meetingPort
	summaries summaryPort
	events    *Events

	dashView dashboardview.Model
	histView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	toast     notify.Event
	width     int
	height    int
}

func NewModel(known []string, connector connectorPort, meetings meetingPort, summaries summaryPort, events *Events) Model {
	if events == nil {
		events = NewEvents()
	}
	return Model{
		connector: connector,
		meetings:  meetings,
		summaries: summaries,
		events:    events,
		dashView:  dashboardview.New(known),
		histView:  historyview.New(),
		activeTab: tabDashboard,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		toast:     notify.Event{Level: notify.LevelInfo, Message: "ready"},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.dashView.Init(),
		m.histView.Init(),
		m.refreshCmd(),
		m.waitForEvent(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case eventMsg:
		m.toast = notify.Event(msg)
		return m, tea.Batch(m.refreshCmd(), m.waitForEvent())

	case snapshotMsg:
		if msg.err != nil {
			m.toast = notify.Event{Level: notify.LevelError, Message: "refresh: " + msg.err.Error()}
			return m, nil
		}
		return m, tea.Batch(m.dashView.SetSnapshot(msg.snapshot), m.histView.SetHistory(msg.history))

	case actionDoneMsg:
		switch {
		case msg.err == nil:
			if msg.status != "" {
				m.toast = notify.Event{Level: notify.LevelInfo, Message: msg.status}
			}
		case apperrors.IsSoft(msg.err):
			m.toast = notify.Event{Level: notify.LevelInfo, Message: msg.err.Error()}
		default:
			m.toast = notify.Event{Level: notify.LevelError, Message: msg.err.Error()}
		}
		return m, m.refreshCmd()

	case previewMsg:
		if msg.err != nil {
			m.histView.StopPreview()
			m.toast = notify.Event{Level: notify.LevelError, Message: "preview: " + msg.err.Error()}
			return m, nil
		}
		m.histView.ShowPreview(msg.out)
		m.toast = notify.Event{Level: notify.LevelSuccess, Message: "preview ready: " + msg.out.MeetingTitle}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabHistory && m.histView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "enter":
			if m.activeTab == tabDashboard {
				if name, connected, ok := m.dashView.SelectedPlatform(); ok && !connected {
					return m, m.connectCmd(name)
				}
				return m, nil
			}
		case "d":
			if m.activeTab == tabDashboard {
				if name, connected, ok := m.dashView.SelectedPlatform(); ok && connected {
					return m, m.disconnectCmd(name)
				}
				return m, nil
			}
		case "s":
			if m.activeTab == tabDashboard {
				if name, _, ok := m.dashView.SelectedPlatform(); ok {
					return m, m.startCmd(name)
				}
				return m, nil
			}
		case "e":
			return m, m.endCmd(m.oldestActive())
		case "x":
			return m, m.cancelCmd(m.oldestActive())
		case "p":
			if m.activeTab == tabHistory {
				if title, ok := m.histView.SelectedTitle(); ok {
					return m, m.previewCmd(title)
				}
				return m, nil
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabDashboard:
		m.dashView, tabCmd = m.dashView.Update(msg)
	case tabHistory:
		m.histView, tabCmd = m.histView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	// The dashboard spinner keeps ticking while another tab is shown.
	if _, ok := msg.(tea.KeyMsg); !ok && m.activeTab != tabDashboard {
		var cmd tea.Cmd
		m.dashView, cmd = m.dashView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabHistory:
		content = m.histView.View()
	default:
		content = m.dashView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "meetnote  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := renderToast(m.toast)
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func renderToast(event notify.Event) string {
	switch event.Level {
	case notify.LevelSuccess:
		return theme.Live.Render("✓ " + event.Message)
	case notify.LevelError:
		return theme.Alert.Render("✗ " + event.Message)
	case notify.LevelLoading:
		return theme.Hot.Render("… " + event.Message)
	default:
		return event.Message
	}
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "connect":
		if arg == "" {
			return m.usage("connect <platform>")
		}
		return m, m.connectCmd(arg)
	case "disconnect":
		if arg == "" {
			return m.usage("disconnect <platform>")
		}
		return m, m.disconnectCmd(arg)
	case "start":
		if arg == "" {
			return m.usage("start <platform>")
		}
		return m, m.startCmd(arg)
	case "end":
		if arg == "" {
			arg = m.oldestActive()
		}
		return m, m.endCmd(arg)
	case "cancel":
		if arg == "" {
			arg = m.oldestActive()
		}
		return m, m.cancelCmd(arg)
	case "preview":
		m.activeTab = tabHistory
		return m, m.previewCmd(arg)
	case "seed":
		return m, m.seedCmd()
	default:
		m.toast = notify.Event{Level: notify.LevelError, Message: "unknown command: " + parts[0]}
	}
	return m, nil
}

func (m Model) usage(text string) (tea.Model, tea.Cmd) {
	m.toast = notify.Event{Level: notify.LevelInfo, Message: "usage: " + text}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) oldestActive() string {
	ids := m.dashView.ActiveMeetingIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.dashView, _ = m.dashView.Update(sz)
	m.histView, _ = m.histView.Update(sz)
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.events.ch)
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		platforms, err := m.connector.Platforms(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		active, err := m.meetings.Active(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		history, err := m.meetings.History(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		stats, err := m.meetings.Stats(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{
			snapshot: dashboardview.Snapshot{Platforms: platforms, Active: active, Stats: stats},
			history:  history,
		}
	}
}

func (m Model) connectCmd(platform string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.connector.Connect(context.Background(), platform)
		return actionDoneMsg{err: err}
	}
}

func (m Model) disconnectCmd(platform string) tea.Cmd {
	return func() tea.Msg {
		err := m.connector.Disconnect(context.Background(), platform)
		return actionDoneMsg{status: platform + " disconnected", err: err}
	}
}

func (m Model) seedCmd() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.connector.SeedDemo(context.Background())}
	}
}

func (m Model) startCmd(platform string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.meetings.Start(context.Background(), platform)
		return actionDoneMsg{err: err}
	}
}

func (m Model) endCmd(meetingID string) tea.Cmd {
	if meetingID == "" {
		return func() tea.Msg { return actionDoneMsg{status: "no active meeting"} }
	}
	return func() tea.Msg {
		out, err := m.meetings.End(context.Background(), meetingID)
		if err == nil && !out.Scheduled {
			return actionDoneMsg{status: "meeting is already ending"}
		}
		return actionDoneMsg{err: err}
	}
}

func (m Model) cancelCmd(meetingID string) tea.Cmd {
	if meetingID == "" {
		return func() tea.Msg { return actionDoneMsg{status: "no active meeting"} }
	}
	return func() tea.Msg {
		_, err := m.meetings.Cancel(context.Background(), meetingID)
		return actionDoneMsg{err: err}
	}
}

func (m *Model) previewCmd(title string) tea.Cmd {
	if m.summaries == nil {
		m.toast = notify.Event{Level: notify.LevelError, Message: "preview: " + apperrors.ErrNotConfigured.Error()}
		return nil
	}
	run := func() tea.Msg {
		out, err := m.summaries.Preview(context.Background(), title)
		return previewMsg{out: out, err: err}
	}
	return tea.Batch(m.histView.StartPreview(), run)
}
