package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	meetingdto "meetnote/internal/modules/meeting/dto"
	summarydto "meetnote/internal/modules/summary/dto"
	"meetnote/internal/ui/theme"
)

// ─── list item ───────────────────────────────────────────────────────────────

type meetingItem struct {
	meeting meetingdto.MeetingOutput
}

func (i meetingItem) Title() string {
	if i.meeting.Summary != nil {
		return i.meeting.Summary.Title
	}
	return i.meeting.Platform + " meeting"
}
func (i meetingItem) Description() string {
	return fmt.Sprintf("%s  %s  %d min", i.meeting.Platform, i.meeting.StartTime.Local().Format("Jan 2 15:04"), i.meeting.DurationMin)
}
func (i meetingItem) FilterValue() string { return i.Title() + " " + i.meeting.Platform }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	list     list.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	preview  *summarydto.PreviewOutput
	loading  bool
	width    int
	height   int
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Green).BorderForeground(theme.Green)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Green)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(glamour.WithStylePath("dark"), glamour.WithWordWrap(0))
	return Model{list: l, viewport: viewport.New(0, 0), spinner: sp, renderer: r}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshDetail()
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	prev := m.list.Index()
	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prev {
		m.preview = nil
		m.refreshDetail()
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())

	detail := m.viewport.View()
	if m.loading {
		detail = lipgloss.Place(detailW-2, m.height-2, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading summary…")
	}
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(detailW-2, 10)).
		Height(max(m.height-2, 1)).
		Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SetHistory replaces the listed meetings, most recent first.
func (m *Model) SetHistory(meetings []meetingdto.MeetingOutput) tea.Cmd {
	items := make([]list.Item, len(meetings))
	for i, meeting := range meetings {
		items[i] = meetingItem{meeting: meeting}
	}
	cmd := m.list.SetItems(items)
	if m.preview == nil {
		m.refreshDetail()
	}
	return cmd
}

// StartPreview shows the spinner until ShowPreview is called.
func (m *Model) StartPreview() tea.Cmd {
	m.loading = true
	return m.spinner.Tick
}

// ShowPreview renders a summary that does not belong to a recorded meeting.
func (m *Model) ShowPreview(out summarydto.PreviewOutput) {
	m.loading = false
	m.preview = &out
	m.refreshDetail()
}

func (m *Model) StopPreview() {
	m.loading = false
}

// SelectedTitle is the highlighted meeting's summary title.
func (m Model) SelectedTitle() (string, bool) {
	item, ok := m.list.SelectedItem().(meetingItem)
	if !ok {
		return "", false
	}
	return item.Title(), true
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	m.list.SetSize(m.width*4/10, m.height)
	detailW := m.width - m.width*4/10
	m.viewport.Width = max(detailW-4, 10)
	m.viewport.Height = max(m.height-4, 1)
	if r, err := glamour.NewTermRenderer(glamour.WithStylePath("dark"), glamour.WithWordWrap(m.viewport.Width)); err == nil {
		m.renderer = r
	}
}

func (m *Model) refreshDetail() {
	var content string
	switch {
	case m.preview != nil:
		content = PreviewMarkdown(*m.preview)
	default:
		item, ok := m.list.SelectedItem().(meetingItem)
		if !ok {
			m.viewport.SetContent(theme.Muted.Render("No meetings recorded yet."))
			return
		}
		content = MeetingMarkdown(item.meeting)
	}
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = rendered
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// MeetingMarkdown renders a completed meeting and its summary.
func MeetingMarkdown(meeting meetingdto.MeetingOutput) string {
	var sb strings.Builder
	title := meeting.Platform + " meeting"
	if meeting.Summary != nil {
		title = meeting.Summary.Title
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "**%s** · %d minutes · %d participants\n\n", meeting.Platform, meeting.DurationMin, meeting.ParticipantCount)
	if meeting.Summary == nil {
		sb.WriteString("_No summary available._\n")
		return sb.String()
	}
	s := meeting.Summary
	items := make([]summarydto.ActionItem, 0, len(s.ActionItems))
	for _, a := range s.ActionItems {
		items = append(items, summarydto.ActionItem{Task: a.Task, Assignee: a.Assignee, DueDate: a.DueDate})
	}
	writeSections(&sb, s.KeyPoints, items, s.Decisions, s.Sentiment, s.Confidence)
	return sb.String()
}

func PreviewMarkdown(out summarydto.PreviewOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", out.MeetingTitle)
	fmt.Fprintf(&sb, "_Preview: %s_\n\n", out.Summary.Title)
	writeSections(&sb, out.Summary.KeyPoints, out.Summary.ActionItems, out.Summary.Decisions, out.Summary.Sentiment, out.Summary.Confidence)
	return sb.String()
}

func writeSections(sb *strings.Builder, keyPoints []string, actions []summarydto.ActionItem, decisions []string, sentiment, confidence string) {
	sb.WriteString("## Key Points\n\n")
	for _, p := range keyPoints {
		fmt.Fprintf(sb, "- %s\n", p)
	}
	sb.WriteString("\n## Action Items\n\n")
	for _, a := range actions {
		fmt.Fprintf(sb, "- [ ] %s (**%s**, due %s)\n", a.Task, a.Assignee, a.DueDate)
	}
	sb.WriteString("\n## Decisions\n\n")
	for _, d := range decisions {
		fmt.Fprintf(sb, "- %s\n", d)
	}
	fmt.Fprintf(sb, "\nSentiment: **%s** · Confidence: **%s**\n", sentiment, confidence)
}
