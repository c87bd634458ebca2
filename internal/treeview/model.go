// Package treeview is an interactive terminal browser for moon syntax trees.
//
// Each node is one row: its field name in the parent, its kind, leaf text
// fields inline and optionally its span. Rows with children can be folded.
package treeview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metaphox/moon-lang/ast"
)

// Row is one visible line of the tree.
type Row struct {
	Depth int
	Field string // name in the parent, "" for the root
	Node  ast.Node
	Path  string // stable key used for folding
	Open  bool
	Leaf  bool
}

// Label renders the row without styles or indentation.
func (r Row) Label(showSpans bool) string {
	var b strings.Builder
	if r.Field != "" {
		b.WriteString(r.Field)
		b.WriteString(": ")
	}
	b.WriteString(string(r.Node.Kind()))
	for _, f := range r.Node.Fields() {
		if f.IsText() {
			b.WriteString(" " + f.Name + "=" + strconv.Quote(f.Text))
		}
	}
	if showSpans {
		b.WriteString(" @" + r.Node.Span().String())
	}
	return b.String()
}

// BuildRows flattens the tree under root, skipping the children of every
// path in collapsed.
func BuildRows(root ast.Node, collapsed map[string]bool) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	var add func(depth int, field, path string, n ast.Node)
	add = func(depth int, field, path string, n ast.Node) {
		children := ast.Children(n)
		row := Row{Depth: depth, Field: field, Node: n, Path: path, Leaf: len(children) == 0}
		row.Open = !row.Leaf && !collapsed[path]
		rows = append(rows, row)
		if !row.Open {
			return
		}
		for _, f := range n.Fields() {
			switch {
			case f.IsList:
				for i, child := range f.List {
					name := fmt.Sprintf("%s[%d]", f.Name, i)
					add(depth+1, name, path+"/"+name, child)
				}
			case f.Node != nil:
				add(depth+1, f.Name, path+"/"+f.Name, f.Node)
			}
		}
	}
	add(0, "", "", root)
	return rows
}

// Outline renders the fully expanded tree as plain indented text.
func Outline(root ast.Node, showSpans bool) string {
	var b strings.Builder
	for _, r := range BuildRows(root, nil) {
		b.WriteString(strings.Repeat("  ", r.Depth))
		b.WriteString(r.Label(showSpans))
		b.WriteByte('\n')
	}
	return b.String()
}

// Model is the Bubbletea model for the tree browser
type Model struct {
	width  int
	height int
	ready  bool

	viewport viewport.Model

	title     string
	root      ast.Node
	rows      []Row
	collapsed map[string]bool
	cursor    int
	showSpans bool
}

// New creates a browser for root. title is shown in the header.
func New(title string, root ast.Node) Model {
	m := Model{
		title:     title,
		root:      root,
		collapsed: make(map[string]bool),
	}
	m.rows = BuildRows(root, m.collapsed)
	return m
}

// Rows returns the rows currently visible.
func (m Model) Rows() []Row { return m.rows }

// Cursor returns the index of the selected row.
func (m Model) Cursor() int { return m.cursor }

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 3
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = viewportHeight
		}
		m.updateViewportContent()
	}
	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(len(m.rows)-1, 0)

	case "enter", " ", "tab":
		if m.cursor < len(m.rows) && !m.rows[m.cursor].Leaf {
			path := m.rows[m.cursor].Path
			m.collapsed[path] = !m.collapsed[path]
			m.rebuild()
		}
	case "e":
		m.collapsed = make(map[string]bool)
		m.rebuild()
	case "c":
		// fold everything below the top level
		m.collapsed = make(map[string]bool)
		for _, r := range BuildRows(m.root, nil) {
			if r.Depth == 1 && !r.Leaf {
				m.collapsed[r.Path] = true
			}
		}
		m.cursor = 0
		m.rebuild()

	case "s":
		m.showSpans = !m.showSpans
	default:
		return m, nil
	}

	m.updateViewportContent()
	return m, nil
}

// rebuild recomputes the rows and keeps the cursor on the same path when it
// is still visible.
func (m *Model) rebuild() {
	var selected string
	if m.cursor < len(m.rows) {
		selected = m.rows[m.cursor].Path
	}
	m.rows = BuildRows(m.root, m.collapsed)
	m.cursor = 0
	for i, r := range m.rows {
		if r.Path == selected {
			m.cursor = i
			break
		}
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "loading tree..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(TreePanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderHeader() string {
	info := SubTitleStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.rows)))
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		TitleStyle.Render(m.title),
		"   ",
		info,
	)
	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("j/k", "move"),
		RenderKeyHint("enter", "fold"),
		RenderKeyHint("e/c", "expand/collapse"),
		RenderKeyHint("s", "spans"),
		RenderKeyHint("g/G", "top/bottom"),
		RenderKeyHint("q", "quit"),
	}
	return strings.Join(items, "  ")
}

// renderRow styles one row
func (m Model) renderRow(i int, r Row) string {
	marker := MarkerLeaf
	if !r.Leaf {
		marker = MarkerClosed
		if r.Open {
			marker = MarkerOpen
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", r.Depth))
	b.WriteString(MarkerStyle.Render(marker))
	if r.Field != "" {
		b.WriteString(FieldStyle.Render(r.Field + ": "))
	}
	b.WriteString(KindStyle.Render(string(r.Node.Kind())))
	for _, f := range r.Node.Fields() {
		if f.IsText() {
			b.WriteString(" " + FieldStyle.Render(f.Name+"=") + TextStyle.Render(strconv.Quote(f.Text)))
		}
	}
	if m.showSpans {
		b.WriteString(" " + SpanStyle.Render("@"+r.Node.Span().String()))
	}

	if i == m.cursor {
		return SelectedStyle.Render(b.String())
	}
	return b.String()
}

// updateViewportContent renders the rows and scrolls the cursor into view
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	lines := make([]string, len(m.rows))
	for i, r := range m.rows {
		lines[i] = m.renderRow(i, r)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// Run starts the tree browser
func Run(title string, root ast.Node) error {
	p := tea.NewProgram(New(title, root), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
