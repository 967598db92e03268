package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
)

func newBrowseCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse months interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("browse needs an interactive terminal (try `tally month`)")
			}
			if month != "" {
				m, err := domain.ParseMonth(month)
				if err != nil {
					return err
				}
				if err := app.Tracker.LoadMonth(cmd.Context(), m); err != nil {
					return fmt.Errorf("loading month: %w", err)
				}
			}
			p := tea.NewProgram(newBrowseModel(cmd.Context(), app.Tracker), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to open (YYYY-MM, default current)")

	return cmd
}

type browseKeyMap struct {
	PrevMonth    key.Binding
	NextMonth    key.Binding
	PrevDay      key.Binding
	NextDay      key.Binding
	NextActivity key.Binding
	Today        key.Binding
	UseExtras    key.Binding
	Recover      key.Binding
	Quit         key.Binding
}

func defaultBrowseKeyMap() browseKeyMap {
	return browseKeyMap{
		PrevMonth:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev month")),
		NextMonth:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next month")),
		PrevDay:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev day")),
		NextDay:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next day")),
		NextActivity: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "activity")),
		Today:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		UseExtras:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "use extras")),
		Recover:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recover")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// monthLoadedMsg reports a finished month change. selectDate, when set,
// moves the day cursor onto that date.
type monthLoadedMsg struct {
	selectDate string
	err        error
}

// ledgerDoneMsg reports a finished spend or reclaim.
type ledgerDoneMsg struct {
	status string
	err    error
}

// browseModel shows one month at a time with a detail pane for the
// selected day. Every change goes through the tracker, and the view
// redraws from a fresh snapshot afterwards.
type browseModel struct {
	ctx     context.Context
	tracker *service.Tracker
	keys    browseKeyMap

	snap     service.MonthSnapshot
	day      int
	activity int

	loading  bool
	status   string
	err      error
	width    int
	quitting bool
}

func newBrowseModel(ctx context.Context, tr *service.Tracker) *browseModel {
	m := &browseModel{
		ctx:     ctx,
		tracker: tr,
		keys:    defaultBrowseKeyMap(),
	}
	m.refresh()
	m.selectDate(tr.Now().Format(domain.DateLayout))
	return m
}

func (m *browseModel) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.PrevMonth, m.keys.NextMonth, m.keys.PrevDay, m.keys.NextDay,
		m.keys.NextActivity, m.keys.UseExtras, m.keys.Recover, m.keys.Today, m.keys.Quit,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) refresh() {
	m.snap = m.tracker.Snapshot()
	m.day = min(m.day, max(len(m.snap.Dates)-1, 0))
	if m.activity >= len(m.snap.Activities) {
		m.activity = 0
	}
}

func (m *browseModel) selectDate(date string) {
	if i := slices.Index(m.snap.Dates, date); i >= 0 {
		m.day = i
	}
}

func (m *browseModel) selectedDate() string {
	if len(m.snap.Dates) == 0 {
		return ""
	}
	return m.snap.Dates[m.day]
}

func (m *browseModel) selectedActivity() (domain.Activity, bool) {
	if len(m.snap.Activities) == 0 {
		return domain.Activity{}, false
	}
	return m.snap.Activities[m.activity], true
}

// ── commands ─────────────────────────────────────────────────────────────────

func (m *browseModel) navigate(dir domain.MonthDirection) tea.Cmd {
	tr, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		return monthLoadedMsg{err: tr.NavigateMonth(ctx, dir)}
	}
}

func (m *browseModel) jumpToToday() tea.Cmd {
	tr, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		now := tr.Now()
		return monthLoadedMsg{
			selectDate: now.Format(domain.DateLayout),
			err:        tr.LoadMonth(ctx, domain.MonthOf(now)),
		}
	}
}

func (m *browseModel) useExtras() tea.Cmd {
	a, ok := m.selectedActivity()
	if !ok {
		return nil
	}
	tr, ctx, date := m.tracker, m.ctx, m.selectedDate()
	return func() tea.Msg {
		spent, err := tr.UseExtras(ctx, date, a.ID, tr.SuggestedSpend(date, a.ID))
		if err != nil {
			return ledgerDoneMsg{err: err}
		}
		if spent == 0 {
			return ledgerDoneMsg{status: fmt.Sprintf("nothing to spend on %s for %s", date, a.Name)}
		}
		return ledgerDoneMsg{status: fmt.Sprintf("spent %d on %s for %s", spent, date, a.Name)}
	}
}

func (m *browseModel) recoverExtras() tea.Cmd {
	a, ok := m.selectedActivity()
	if !ok {
		return nil
	}
	tr, ctx, date := m.tracker, m.ctx, m.selectedDate()
	return func() tea.Msg {
		reclaimed, err := tr.RecoverExtras(ctx, date, a.ID)
		if err != nil {
			return ledgerDoneMsg{err: err}
		}
		return ledgerDoneMsg{status: fmt.Sprintf("reclaimed %d from %s for %s", reclaimed, date, a.Name)}
	}
}

// ── update ───────────────────────────────────────────────────────────────────

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case monthLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.refresh()
		if msg.selectDate != "" {
			m.selectDate(msg.selectDate)
		}
		return m, nil

	case ledgerDoneMsg:
		m.loading = false
		m.err = msg.err
		m.status = msg.status
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// Ignore further input until the pending change lands.
		if m.loading {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.PrevMonth):
			m.loading = true
			return m, m.navigate(domain.MonthPrev)
		case key.Matches(msg, m.keys.NextMonth):
			m.loading = true
			return m, m.navigate(domain.MonthNext)
		case key.Matches(msg, m.keys.Today):
			m.loading = true
			return m, m.jumpToToday()
		case key.Matches(msg, m.keys.PrevDay):
			if m.day > 0 {
				m.day--
			}
		case key.Matches(msg, m.keys.NextDay):
			if m.day < len(m.snap.Dates)-1 {
				m.day++
			}
		case key.Matches(msg, m.keys.NextActivity):
			if n := len(m.snap.Activities); n > 0 {
				m.activity = (m.activity + 1) % n
			}
		case key.Matches(msg, m.keys.UseExtras):
			if cmd := m.useExtras(); cmd != nil {
				m.loading = true
				return m, cmd
			}
		case key.Matches(msg, m.keys.Recover):
			if cmd := m.recoverExtras(); cmd != nil {
				m.loading = true
				return m, cmd
			}
		}
	}
	return m, nil
}

// ── view ─────────────────────────────────────────────────────────────────────

func (m *browseModel) View() string {
	if m.quitting {
		return ""
	}
	now := m.tracker.Now()

	var b strings.Builder
	month := formatter.FormatMonth(m.snap, now)
	detail := formatter.FormatDay(m.snap, m.selectedDate(), now)
	if m.width >= lipgloss.Width(month)+lipgloss.Width(detail)+2 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, month, "  ", detail))
	} else {
		b.WriteString(month + "\n" + detail)
	}
	b.WriteString("\n")

	if a, ok := m.selectedActivity(); ok {
		date := m.selectedDate()
		b.WriteString(fmt.Sprintf("%s %s  %s\n",
			formatter.Dim("selected:"), formatter.ActivityName(a),
			formatter.Dim(fmt.Sprintf("can spend %d", m.tracker.SuggestedSpend(date, a.ID)))))
	}

	switch {
	case m.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	case m.loading:
		b.WriteString(formatter.Dim("saving…") + "\n")
	case m.status != "":
		b.WriteString(formatter.StyleGreen.Render(m.status) + "\n")
	}

	var hints []string
	for _, k := range m.ShortHelp() {
		hints = append(hints, formatter.Dim(k.Help().Key+": "+k.Help().Desc))
	}
	sep := formatter.Dim(strings.Repeat("─", max(m.width, 20)))
	b.WriteString(sep + "\n" + strings.Join(hints, "  "))
	return b.String()
}
