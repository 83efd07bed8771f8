// Package historyui provides the Bubble Tea run history browser.
package historyui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/zipforce/internal/model"
	"github.com/verte-zerg/zipforce/internal/report"
)

const maxColumnWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0"))
)

// Model implements the history table UI.
type Model struct {
	runs   []model.Run
	table  table.Model
	width  int
	height int
}

// NewModel constructs a history UI for runs, newest first.
func NewModel(runs []model.Run) *Model {
	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, table.Row(report.RunRow(r)))
	}
	t := table.New(
		table.WithColumns(buildColumns(rows)),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return &Model{runs: runs, table: t}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(maxInt(1, msg.Height-4))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "g", "home":
			m.table.GotoTop()
			return m, nil
		case "G", "end":
			m.table.GotoBottom()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Run history (%d)", len(m.runs))))
	b.WriteString("\n")
	if len(m.runs) == 0 {
		b.WriteString("No runs found.\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(detailStyle.Render(m.renderDetail()))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("↑/↓ move • g/G top/bottom • q quit"))
	return b.String()
}

func (m *Model) renderDetail() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.runs) {
		return ""
	}
	r := m.runs[idx]
	return truncate(fmt.Sprintf("%s  members: %s", r.ID, strings.Join(r.Members, ", ")), m.width)
}

func buildColumns(rows []table.Row) []table.Column {
	cols := make([]table.Column, len(report.RunHeaders))
	for i, title := range report.RunHeaders {
		width := runewidth.StringWidth(title)
		for _, row := range rows {
			if i < len(row) {
				if w := runewidth.StringWidth(row[i]); w > width {
					width = w
				}
			}
		}
		cols[i] = table.Column{Title: title, Width: minInt(width, maxColumnWidth)}
	}
	return cols
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
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
