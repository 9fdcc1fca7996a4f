package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/harness"
	"github.com/matzehuels/harnessviz/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// HarnessListModel - Interactive harness browser
// =============================================================================

// HarnessListModel is the bubbletea model of the inspect command. It lists
// harnesses and shows the cables and links of the one selected.
type HarnessListModel struct {
	Results []*pipeline.Result
	Cursor  int
	Height  int
	Offset  int

	// Detail is true while the selected harness is open.
	Detail       bool
	DetailOffset int
}

// NewHarnessListModel creates a new harness list model.
func NewHarnessListModel(results []*pipeline.Result) HarnessListModel {
	return HarnessListModel{Results: results, Height: 15}
}

func (m HarnessListModel) Init() tea.Cmd {
	return nil
}

func (m HarnessListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Results)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Results) > 0 && m.Results[m.Cursor].Err == nil {
				m.Detail = true
				m.DetailOffset = 0
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m HarnessListModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace", "left", "h":
		m.Detail = false
	case "up", "k":
		if m.DetailOffset > 0 {
			m.DetailOffset--
		}
	case "down", "j":
		if m.DetailOffset < len(m.detailLines())-1 {
			m.DetailOffset++
		}
	}
	return m, nil
}

func (m HarnessListModel) View() string {
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Harnesses"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Results))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Results[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		if r.Err != nil {
			rows = append(rows, []string{cursor, r.Name, "-", "-", "-", "-", string(errors.GetCode(r.Err))})
			continue
		}
		s := r.Stats
		rows = append(rows, []string{cursor, r.Name,
			fmt.Sprint(s.Connectors), fmt.Sprint(s.Cables), fmt.Sprint(s.Links), fmt.Sprint(s.BOMEntries), "ok"})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Harness", "Connectors", "Cables", "Links", "BOM", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Results) {
				return lipgloss.NewStyle()
			}
			failed := m.Results[idx].Err != nil
			current := idx == m.Cursor

			base := lipgloss.NewStyle()
			switch {
			case failed && col == 6:
				base = base.Foreground(colorRed)
			case failed:
				base = base.Foreground(colorDim)
			case col == 6:
				base = base.Foreground(colorGreen)
			}
			if current {
				if !failed && col != 6 {
					base = base.Foreground(colorCyan)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.Results) > 0 {
		if err := m.Results[m.Cursor].Err; err != nil {
			b.WriteString(listErrorStyle.Render("  " + errors.UserMessage(err)))
			b.WriteString("\n")
		}
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Results))))
	}
	return b.String()
}

func (m HarnessListModel) detailView() string {
	res := m.Results[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(res.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scroll  esc back  q quit"))
	b.WriteString("\n\n")

	lines := m.detailLines()
	end := min(m.DetailOffset+m.Height, len(lines))
	for _, line := range lines[m.DetailOffset:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// detailLines lists the entities and links of the selected harness.
func (m HarnessListModel) detailLines() []string {
	if len(m.Results) == 0 || m.Results[m.Cursor].Harness == nil {
		return nil
	}
	h := m.Results[m.Cursor].Harness

	var lines []string
	for _, c := range h.Connectors {
		lines = append(lines, listNormalStyle.Render(fmt.Sprintf("%-10s", c.ID))+
			listDimStyle.Render(fmt.Sprintf(" connector  %s  %d pins", strings.TrimSpace(c.Type+" "+c.Subtype), len(c.Pins))))
	}
	for _, c := range h.Cables {
		desc := fmt.Sprintf(" %s  %d wires", c.Category, len(c.Wires))
		if c.Category == "" {
			desc = fmt.Sprintf(" cable  %d wires", len(c.Wires))
		}
		if c.GaugeLabel != "" {
			desc += "  " + c.GaugeLabel
		}
		if !c.Length.IsZero() {
			desc += "  " + c.Length.String()
		}
		lines = append(lines, listNormalStyle.Render(fmt.Sprintf("%-10s", c.ID))+listDimStyle.Render(desc))
	}
	lines = append(lines, "")
	for _, l := range h.Links() {
		lines = append(lines, linkLine(h, l))
	}
	return lines
}

// linkLine renders one link with the wire color of its cable.
func linkLine(h *harness.Harness, l harness.Link) string {
	line := listSelectedStyle.Render(fmt.Sprintf("%3d ", l.Row)) + listNormalStyle.Render(l.String())
	if c, ok := h.Cable(l.Via.Entity); ok {
		if w, ok := c.Wire(l.Via.Designator); ok && !w.Color.IsZero() {
			line += " " + listDimStyle.Render(w.Color.String())
		}
	}
	return line
}
