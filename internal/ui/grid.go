package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nibzard/agenda-go/internal/agenda"
	"github.com/nibzard/agenda-go/internal/schedule"
)

// TemporaryMark follows the label of a temporary interval in the grid.
const TemporaryMark = "*"

const cellWidth = 14

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	slotStyle   = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Padding(0, 1).Reverse(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	markStyle   = lipgloss.NewStyle().Underline(true)
)

// GridOption configures RenderWeek.
type GridOption func(*gridConfig)

type gridConfig struct {
	days []schedule.Day
}

// WithDays limits the grid to days, in the given order.
func WithDays(days []schedule.Day) GridOption {
	return func(c *gridConfig) {
		if len(days) > 0 {
			c.days = days
		}
	}
}

// RenderWeek writes the week as a table: one row per slot, one column per
// day, each cell holding the label shown by the slot.
func RenderWeek(w io.Writer, m *schedule.Manager, opts ...GridOption) error {
	c := &gridConfig{days: schedule.Days()}
	for _, opt := range opts {
		opt(c)
	}
	_, err := fmt.Fprintln(w, weekTable(m, c.days, m.SlotLabels(), -1, -1).Render())
	return err
}

// weekTable builds the grid; the cell at (row, col) is highlighted when
// both are non-negative.
func weekTable(m *schedule.Manager, days []schedule.Day, slots []string, row, col int) *table.Table {
	headers := make([]string, 0, len(days)+1)
	headers = append(headers, "")
	for _, d := range days {
		headers = append(headers, string(d))
	}

	rows := make([][]string, 0, len(slots))
	for _, slot := range slots {
		r := make([]string, 0, len(days)+1)
		r = append(r, slot)
		for _, d := range days {
			r = append(r, cellText(m, d, slot))
		}
		rows = append(rows, r)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return headerStyle
			case c == 0:
				return slotStyle
			case r == row && c == col+1:
				return cursorStyle
			default:
				return cellStyle
			}
		})
}

func cellText(m *schedule.Manager, d schedule.Day, slot string) string {
	iv, ok := m.Occupant(d, slot)
	if !ok {
		return ""
	}
	label := iv.Label
	if iv.Temporary {
		label += TemporaryMark
	}
	return truncate(label, cellWidth)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var monthNames = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// MonthName returns the French name of month.
func MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return month.String()
	}
	return monthNames[month-1]
}

// RenderMonth writes a Monday-first calendar page. Days holding events are
// followed by a mark.
func RenderMonth(w io.Writer, month agenda.Month) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", MonthName(month.Month), month.Year)))
	b.WriteString("\n")
	for _, d := range schedule.Days() {
		b.WriteString(fmt.Sprintf("%-4s", d.Short()[:2]))
	}
	b.WriteString("\n")
	for _, week := range month.Weeks {
		for _, day := range week {
			switch {
			case day == 0:
				b.WriteString("    ")
			case month.Marked[day]:
				b.WriteString(markStyle.Render(fmt.Sprintf("%2d", day)) + TemporaryMark + " ")
			default:
				b.WriteString(fmt.Sprintf("%2d  ", day))
			}
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, strings.TrimRight(b.String(), " "))
	return err
}
