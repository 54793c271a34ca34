package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/htdecomp/pkg/hypergraph"
	"github.com/matzehuels/htdecomp/pkg/hypertree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// TreeModel - Interactive decomposition browser
// =============================================================================

// treeRow is one node of the browsed tree in pre-order.
type treeRow struct {
	handle hypertree.Handle
	depth  int
}

// TreeModel is the bubbletea model for browsing a decomposition node by
// node. The left pane lists the nodes indented by depth, the right pane
// shows lambda, chi and the fractional cover of the node under the cursor.
type TreeModel struct {
	Tree   *hypertree.Tree
	Rows   []treeRow
	Cursor int
	Height int
	Offset int
}

// NewTreeModel creates a browser over t.
func NewTreeModel(t *hypertree.Tree) TreeModel {
	return TreeModel{Tree: t, Rows: flatten(t), Height: 15}
}

// flatten lists the nodes of t in pre-order with their depths.
func flatten(t *hypertree.Tree) []treeRow {
	var rows []treeRow
	var walk func(h hypertree.Handle, depth int)
	walk = func(h hypertree.Handle, depth int) {
		rows = append(rows, treeRow{handle: h, depth: depth})
		for _, c := range t.Children(h) {
			walk(c, depth+1)
		}
	}
	if root := t.Root(); root != hypertree.None {
		walk(root, 0)
	}
	return rows
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(0, len(m.Rows)-1)
		case "p":
			m.Cursor = m.parentRow()
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-6)
	}
	m.scroll()
	return m, nil
}

// parentRow returns the row of the parent of the current node, or the
// current row at the root.
func (m TreeModel) parentRow() int {
	if len(m.Rows) == 0 {
		return 0
	}
	p := m.Tree.Parent(m.Rows[m.Cursor].handle)
	for i := m.Cursor - 1; i >= 0; i-- {
		if m.Rows[i].handle == p {
			return i
		}
	}
	return m.Cursor
}

func (m *TreeModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Hypertree Decomposition"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("width %d · %d nodes", m.Tree.Width(), len(m.Rows))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  p parent  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty tree)"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	var lines []string
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		n := m.Tree.Node(r.handle)
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + strings.Repeat("  ", r.depth) + edgeNames(n.Lambda.Sorted())
		switch {
		case i == m.Cursor:
			lines = append(lines, listSelectedStyle.Render(line))
		case n.Cut:
			lines = append(lines, listDimStyle.Render(line))
		default:
			lines = append(lines, listNormalStyle.Render(line))
		}
	}

	left := strings.Join(lines, "\n")
	right := detailBoxStyle.Render(m.details(m.Rows[m.Cursor].handle))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// details renders the node at h as a small key/value table.
func (m TreeModel) details(h hypertree.Handle) string {
	n := m.Tree.Node(h)
	rows := [][]string{
		{"node", fmt.Sprint(h)},
		{"depth", fmt.Sprint(m.Rows[m.Cursor].depth)},
		{"lambda", edgeNames(n.Lambda.Sorted())},
		{"chi", vertexNames(n.Chi.Sorted())},
		{"|chi|", fmt.Sprint(n.Chi.Len())},
		{"children", fmt.Sprint(len(m.Tree.Children(h)))},
	}
	if n.Cover != nil {
		rows = append(rows, []string{"cover", fmt.Sprintf("%.3g", n.Cover.Weight)})
	}
	if n.Cut {
		rows = append(rows, []string{"cut", "yes"})
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorGray)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Width(36)
		})
	return t.Render()
}

// =============================================================================
// Helpers
// =============================================================================

func edgeNames(es []*hypergraph.Edge) string {
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.Name
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func vertexNames(vs []*hypergraph.Vertex) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// formatRelativeTime renders t relative to now for listings.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
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
