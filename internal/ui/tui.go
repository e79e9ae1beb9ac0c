// Package ui renders the weekly schedule and runs the interactive grid.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/agenda-go/internal/reminder"
	"github.com/nibzard/agenda-go/internal/schedule"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*Model)

// WithVisibleDays sets the grid columns.
func WithVisibleDays(days []schedule.Day) TUIOption {
	return func(m *Model) {
		if len(days) > 0 {
			m.days = days
		}
	}
}

// WithReminders shows poller results in the status line.
func WithReminders(ch <-chan reminder.Status) TUIOption {
	return func(m *Model) { m.reminders = ch }
}

// WithReloads reloads the schedule on every receive, e.g. from a Watcher.
func WithReloads(ch <-chan struct{}) TUIOption {
	return func(m *Model) { m.reloads = ch }
}

// WithNow replaces the clock used for reminder descriptions.
func WithNow(now func() time.Time) TUIOption {
	return func(m *Model) { m.now = now }
}

// WithRefresh sets how often the schedule is reloaded and swept.
func WithRefresh(d time.Duration) TUIOption {
	return func(m *Model) { m.tickInterval = d }
}

// RunTUI starts the interactive grid over mgr until the user quits or ctx
// is done.
func RunTUI(ctx context.Context, mgr *schedule.Manager, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return errors.New("tui requires a TTY")
	}
	model := NewModel(ctx, mgr, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type mode int

const (
	modeBrowse mode = iota
	modeInput
)

// Model is the bubbletea model of the schedule grid.
type Model struct {
	ctx          context.Context
	mgr          *schedule.Manager
	days         []schedule.Day
	slots        []string
	row, col     int
	mode         mode
	input        string
	status       string
	statusErr    bool
	reminders    <-chan reminder.Status
	reloads      <-chan struct{}
	now          func() time.Time
	tickInterval time.Duration
	showHelp     bool
}

type tickMsg time.Time

type reminderMsg struct {
	status reminder.Status
}

type reloadMsg struct{}

// NewModel returns a model positioned on the first slot of the first day.
func NewModel(ctx context.Context, mgr *schedule.Manager, opts ...TUIOption) *Model {
	m := &Model{
		ctx:          ctx,
		mgr:          mgr,
		days:         schedule.Days(),
		slots:        mgr.SlotLabels(),
		now:          time.Now,
		tickInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tickInterval)}
	if m.reminders != nil {
		cmds = append(cmds, waitForReminder(m.reminders))
	}
	if m.reloads != nil {
		cmds = append(cmds, waitForReload(m.reloads))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeInput {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	case tickMsg:
		m.reload("")
		return m, tickCmd(m.tickInterval)
	case reloadMsg:
		m.reload("Emploi du temps rechargé")
		return m, waitForReload(m.reloads)
	case reminderMsg:
		m.showReminder(msg.status)
		return m, waitForReminder(m.reminders)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.slots)-1 {
			m.row++
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < len(m.days)-1 {
			m.col++
		}
	case "a":
		m.mode = modeInput
		m.input = ""
	case "d":
		m.removeAtCursor()
	case "r", "f5":
		m.reload("Emploi du temps rechargé")
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input = ""
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.submit(m.input)
		m.input = ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

// Day returns the day under the cursor.
func (m *Model) Day() schedule.Day { return m.days[m.col] }

// Slot returns the slot label under the cursor.
func (m *Model) Slot() string { return m.slots[m.row] }

// Status returns the status line text.
func (m *Model) Status() string { return m.status }

// submit adds the interval described by "START END LABEL [!]" to the day
// under the cursor; a trailing "!" marks it temporary.
func (m *Model) submit(line string) {
	iv, err := ParseEntry(line)
	if err != nil {
		m.setError(err)
		return
	}
	day := m.Day()
	if err := m.mgr.AddInterval(m.ctx, day, iv); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("Ajouté %s %s", day, iv))
}

// ParseEntry reads "START END LABEL [!]". Times accept the loose forms of
// schedule.ParseLooseClock.
func ParseEntry(line string) (schedule.Interval, error) {
	fields := strings.Fields(line)
	temporary := false
	if n := len(fields); n > 0 && fields[n-1] == "!" {
		temporary = true
		fields = fields[:n-1]
	}
	if len(fields) < 3 {
		return schedule.Interval{}, errors.New("format: DEBUT FIN LIBELLE [!]")
	}
	start, err := schedule.ParseLooseClock(fields[0])
	if err != nil {
		return schedule.Interval{}, fmt.Errorf("start: %w", err)
	}
	end, err := schedule.ParseLooseClock(fields[1])
	if err != nil {
		return schedule.Interval{}, fmt.Errorf("end: %w", err)
	}
	return schedule.Interval{
		Start:     start,
		End:       end,
		Label:     strings.Join(fields[2:], " "),
		Temporary: temporary,
	}, nil
}

func (m *Model) removeAtCursor() {
	day, slot := m.Day(), m.Slot()
	iv, ok := m.mgr.Occupant(day, slot)
	if !ok {
		m.setStatus(fmt.Sprintf("Rien à supprimer %s %s", day, slot))
		return
	}
	if _, err := m.mgr.RemoveInterval(m.ctx, day, iv.Start); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("Supprimé %s %s", day, iv))
}

func (m *Model) reload(done string) {
	if err := m.mgr.Reload(m.ctx); err != nil {
		m.setError(err)
		return
	}
	if done != "" {
		m.setStatus(done)
	}
}

func (m *Model) showReminder(s reminder.Status) {
	if s.Error != nil {
		m.setError(s.Error)
		return
	}
	if len(s.Reminders) == 0 {
		return
	}
	now := m.now()
	lines := make([]string, 0, len(s.Reminders))
	for _, r := range s.Reminders {
		lines = append(lines, r.Describe(now))
	}
	m.setStatus(strings.Join(lines, " | "))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	if schedule.IsRejection(err) || errors.Is(err, schedule.ErrCorruptState) {
		m.status = fmt.Sprintf("%s: %v", schedule.Kind(err), err)
	} else {
		m.status = err.Error()
	}
	m.statusErr = true
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	b.WriteString(weekTable(m.mgr, m.days, m.slots, m.row, m.col).Render())
	b.WriteString("\n\n")

	cursor := fmt.Sprintf("%s %s", m.Day(), m.Slot())
	if iv, ok := m.mgr.Occupant(m.Day(), m.Slot()); ok {
		cursor += "  " + iv.String()
	}
	b.WriteString(cursor + "\n")

	if m.mode == modeInput {
		b.WriteString(fmt.Sprintf("Ajouter à %s (DEBUT FIN LIBELLE [!]): %s_\n", m.Day(), m.input))
	} else if m.status != "" {
		prefix := ""
		if m.statusErr {
			prefix = "Erreur: "
		}
		b.WriteString(prefix + m.status + "\n")
	}
	b.WriteString("\n")
	writeFooter(&b)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForReminder(ch <-chan reminder.Status) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return reminderMsg{status: s}
	}
}

func waitForReload(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return reloadMsg{}
	}
}

func writeTitle(b *strings.Builder) {
	title := "Emploi du temps"
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Raccourcis\n\n")
	b.WriteString("  flèches, hjkl  Déplacer le curseur\n")
	b.WriteString("  a              Ajouter un créneau au jour sélectionné\n")
	b.WriteString("  d              Supprimer le créneau sous le curseur\n")
	b.WriteString("  r, F5          Recharger\n")
	b.WriteString("  ?              Afficher/masquer l'aide\n")
	b.WriteString("  q, ctrl+c      Quitter\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("? aide | a ajouter | d supprimer | r recharger | q quitter\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
