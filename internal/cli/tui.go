package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zhengjing-huang/lighthouse/pkg/pipeline"
	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	labelWidth = 48
	barWidth   = 20
)

// =============================================================================
// InspectModel - Interactive tree browser
// =============================================================================

// treeRow is one visible line of the browser.
type treeRow struct {
	node  *treemap.Node
	depth int
}

// InspectModel is the bubbletea model for browsing an aggregated tree.
// The visible rows follow the expansion state and are rebuilt whenever a
// node is expanded or collapsed.
type InspectModel struct {
	Tree   *pipeline.Tree
	Title  string
	Cursor int
	Offset int
	Height int

	rows      []treeRow
	expanded  map[*treemap.Node]bool
	showDupes bool
}

// NewInspectModel creates a browser over the given tree with the root
// expanded, so the top-level bundles are visible immediately.
func NewInspectModel(tree *pipeline.Tree, title string) InspectModel {
	m := InspectModel{
		Tree:     tree,
		Title:    title,
		Height:   15,
		expanded: map[*treemap.Node]bool{tree.Root: true},
	}
	m.rebuildRows()
	return m
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
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
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "right", "l", "enter":
			row := m.rows[m.Cursor]
			if len(row.node.Children) > 0 && !m.expanded[row.node] {
				m.expanded[row.node] = true
				m.rebuildRows()
			}
		case "left", "h":
			row := m.rows[m.Cursor]
			if m.expanded[row.node] && row.node != m.Tree.Root {
				delete(m.expanded, row.node)
				m.rebuildRows()
			} else if parent := m.parentIndex(m.Cursor); parent >= 0 {
				m.Cursor = parent
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "d":
			m.showDupes = !m.showDupes
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  →/⏎ expand  ← collapse  d duplicates  q quit"))
	b.WriteString("\n\n")

	if m.showDupes {
		b.WriteString(m.duplicatesView())
	} else {
		b.WriteString(m.treeView())
	}

	b.WriteString("\n")
	root := m.Tree.Root
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %s total · %s unused (%s)",
		m.Cursor+1, len(m.rows),
		treemap.FormatBytes(root.ResourceBytes),
		treemap.FormatBytes(root.UnusedBytes),
		treemap.FormatPercent(root.UnusedBytes, root.ResourceBytes))))

	return b.String()
}

// treeView renders the visible window of tree rows: fold marker, name,
// size, a bar proportional to the whole tree, and the unused share.
func (m InspectModel) treeView() string {
	var b strings.Builder

	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	total := m.Tree.Root.ResourceBytes
	for i := m.Offset; i < end; i++ {
		row := m.rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		marker := "  "
		switch {
		case len(row.node.Children) == 0:
		case m.expanded[row.node]:
			marker = "▾ "
		default:
			marker = "▸ "
		}

		name := row.node.Name
		if name == "" {
			name = "(unnamed)"
		}
		label := padLabel(strings.Repeat("  ", row.depth)+marker+name, labelWidth)

		line := fmt.Sprintf("%s%s %12s  %s %6s",
			cursor, label,
			treemap.FormatBytes(row.node.ResourceBytes),
			byteBar(row.node.ResourceBytes, total, barWidth),
			treemap.FormatPercent(row.node.UnusedBytes, row.node.ResourceBytes))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case len(row.node.Children) == 0:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// duplicatesView renders the duplicate-modules panel.
func (m InspectModel) duplicatesView() string {
	dupes := m.Tree.Duplicates
	if len(dupes) == 0 {
		return listDimStyle.Render("  No duplicated modules found.") + "\n"
	}

	shown := dupes
	if len(shown) > m.Height {
		shown = shown[:m.Height]
	}

	rows := [][]string{}
	for _, d := range shown {
		rows = append(rows, []string{
			truncateLabel(d.Source, labelWidth),
			fmt.Sprintf("%d", len(d.Nodes)),
			treemap.FormatBytes(d.WastedBytes),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Module", "Copies", "Wasted").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return listNormalStyle
			}
			return listDimStyle
		})

	out := t.Render() + "\n"
	if len(shown) < len(dupes) {
		out += listDimStyle.Render(fmt.Sprintf("  … %d more", len(dupes)-len(shown))) + "\n"
	}
	return out
}

// rebuildRows regenerates the visible rows from the expansion state and
// clamps the cursor into range.
func (m *InspectModel) rebuildRows() {
	// Models are copied by value through Update; reusing the backing array
	// would alias the previous copy's rows.
	m.rows = make([]treeRow, 0, len(m.rows))

	var walk func(n *treemap.Node, depth int)
	walk = func(n *treemap.Node, depth int) {
		m.rows = append(m.rows, treeRow{node: n, depth: depth})
		if m.expanded[n] {
			for _, c := range n.Children {
				walk(c, depth+1)
			}
		}
	}
	walk(m.Tree.Root, 0)

	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

// parentIndex returns the index of the nearest row above i with a smaller
// depth, or -1 when i is a top-level row.
func (m InspectModel) parentIndex(i int) int {
	d := m.rows[i].depth
	for j := i - 1; j >= 0; j-- {
		if m.rows[j].depth < d {
			return j
		}
	}
	return -1
}

// =============================================================================
// Helpers
// =============================================================================

// byteBar renders part of total as a fixed-width bar. Nonzero parts get at
// least one cell so small nodes stay visible.
func byteBar(part, total int64, width int) string {
	if total <= 0 || width <= 0 {
		return strings.Repeat(" ", width)
	}
	filled := int(float64(width) * float64(part) / float64(total))
	if filled > width {
		filled = width
	}
	if part > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// padLabel pads or truncates s to exactly width display runes.
func padLabel(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return truncateLabel(s, width)
	}
	return s + strings.Repeat(" ", width-len(r))
}

// truncateLabel cuts s to width runes, marking the cut with an ellipsis.
func truncateLabel(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
