package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	connectordto "meetnote/internal/modules/connector/dto"
	meetingdto "meetnote/internal/modules/meeting/dto"
	"meetnote/internal/ui/theme"
)

// ─── data ────────────────────────────────────────────────────────────────────

// Snapshot is the state the dashboard renders. The app model refreshes it
// whenever a notifier event arrives.
type Snapshot struct {
	Platforms []connectordto.PlatformOutput
	Active    []meetingdto.MeetingOutput
	Stats     meetingdto.StatsOutput
}

// ─── list item ───────────────────────────────────────────────────────────────

type platformItem struct {
	name      string
	connected bool
	active    int
}

func (i platformItem) Title() string { return i.name }
func (i platformItem) Description() string {
	if !i.connected {
		return "not connected  enter: connect"
	}
	if i.active > 0 {
		return fmt.Sprintf("connected  %d active", i.active)
	}
	return "connected  s: start meeting"
}
func (i platformItem) FilterValue() string { return i.name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	known    []string
	list     list.Model
	spinner  spinner.Model
	snapshot Snapshot
	width    int
	height   int
}

// New lists the known platforms even before they connect.
func New(known []string) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Platforms"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	m := Model{known: append([]string(nil), known...), list: l, spinner: sp}
	m.list.SetItems(m.items())
	return m
}

func (m Model) Init() tea.Cmd { return m.spinner.Tick }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*4/10, m.height)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	return m, tea.Batch(cmds...)
}

// SetSnapshot replaces the rendered state and keeps the selection in place.
func (m *Model) SetSnapshot(s Snapshot) tea.Cmd {
	m.snapshot = s
	return m.list.SetItems(m.items())
}

// SelectedPlatform returns the highlighted platform and whether it is connected.
func (m Model) SelectedPlatform() (string, bool, bool) {
	item, ok := m.list.SelectedItem().(platformItem)
	if !ok {
		return "", false, false
	}
	return item.name, item.connected, true
}

// ActiveMeetingIDs lists active meetings, oldest first.
func (m Model) ActiveMeetingIDs() []string {
	ids := make([]string, 0, len(m.snapshot.Active))
	for _, a := range m.snapshot.Active {
		ids = append(ids, a.ID)
	}
	return ids
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.
		Width(max(detailW-4, 10)).
		Height(max(m.height-4, 1)).
		Render(m.renderStats() + "\n\n" + m.renderActive())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) items() []list.Item {
	connected := map[string]bool{}
	names := append([]string(nil), m.known...)
	for _, p := range m.snapshot.Platforms {
		connected[p.Name] = true
		if !slices.Contains(names, p.Name) {
			names = append(names, p.Name)
		}
	}
	active := map[string]int{}
	for _, a := range m.snapshot.Active {
		active[a.Platform]++
	}
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, platformItem{name: name, connected: connected[name], active: active[name]})
	}
	return items
}

func (m Model) renderStats() string {
	s := m.snapshot.Stats
	cells := []string{
		stat("Platforms", fmt.Sprint(s.ConnectedPlatforms)),
		stat("Meetings", fmt.Sprint(s.MeetingsRecorded)),
		stat("Time saved", fmt.Sprintf("%dh %dm", s.MinutesSaved/60, s.MinutesSaved%60)),
		stat("Action items", fmt.Sprint(s.ActionItems)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func stat(label, value string) string {
	return lipgloss.NewStyle().PaddingRight(3).Render(theme.Hot.Render(value) + "\n" + theme.Muted.Render(label))
}

func (m Model) renderActive() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Active meetings") + "\n")
	if len(m.snapshot.Active) == 0 {
		sb.WriteString(theme.Muted.Render("none. select a connected platform and press s"))
		return sb.String()
	}
	for n, a := range m.snapshot.Active {
		state := a.Status
		switch {
		case a.Ending:
			state = "processing summary"
		case a.Status == "recording":
			state = theme.Live.Render("● ") + "recording"
		}
		fmt.Fprintf(&sb, "%d. %s %s  %s  %s\n", n+1, m.spinner.View(), a.Platform, state, theme.Muted.Render(a.ID))
	}
	return sb.String()
}
