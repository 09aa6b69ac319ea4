// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// ChunkList displays the board's chunks in insertion order.
type ChunkList struct {
	nodes  []domain.Node
	edges  []domain.Edge
	cursor int

	// selectedID is the board's selection, marked independently of the cursor.
	selectedID string

	// markedID is the source chunk while picking a link target.
	markedID string

	styles *styles.Styles
	width  int
	height int
}

// NewChunkList creates a new chunk list component.
func NewChunkList(s *styles.Styles) *ChunkList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ChunkList{
		styles: s,
		width:  60,
		height: 20,
	}
}

// Init initialises the chunk list.
func (l *ChunkList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *ChunkList) Update(msg tea.Msg) (*ChunkList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the chunk list.
func (l *ChunkList) View() string {
	if len(l.nodes) == 0 {
		return l.styles.Muted.Render("No chunks yet. Press / to ask a question.")
	}

	lines := make([]string, 0, len(l.nodes)*2+2)
	header := l.styles.Subtitle.Render(fmt.Sprintf("Chunks (%d)", len(l.nodes)))
	lines = append(lines, header, "")

	// Each chunk takes two lines.
	visibleCount := max((l.height-2)/2, 1)
	start := 0
	if l.cursor >= visibleCount {
		start = l.cursor - visibleCount + 1
	}
	end := min(start+visibleCount, len(l.nodes))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderNode(i, l.nodes[i]))
	}
	return strings.Join(lines, "\n")
}

// renderNode formats one chunk with its label, status and links.
func (l *ChunkList) renderNode(index int, n domain.Node) string {
	indicator := "  "
	if index == l.cursor {
		indicator = "> "
	}

	var tags []string
	if n.ID == l.selectedID {
		tags = append(tags, "selected")
	}
	if n.ID == l.markedID {
		tags = append(tags, "linking")
	}
	if links := l.linkedLabels(n.ID); links != "" {
		tags = append(tags, "↔ "+links)
	}

	query := truncate(n.Payload.Query, max(l.width-30, 10))
	title := fmt.Sprintf("%s%s %s ", indicator, l.styles.Swatch(n.Payload.Color, n.Label), query)
	if index == l.cursor {
		title = l.styles.Selected.Render(fmt.Sprintf("%s[%s] %s ", indicator, n.Label, query))
	}

	status := l.styles.Status(n.Payload.Status).Render(n.Payload.Status.String())
	meta := ""
	if len(tags) > 0 {
		meta = " " + l.styles.Muted.Render(strings.Join(tags, " · "))
	}

	preview := n.Payload.Answer
	if n.Payload.Kind == domain.KindImage && preview != "" {
		preview = "image: " + preview
	}
	if preview == "" {
		preview = "…"
	}
	previewLine := l.styles.Muted.Render("     " + truncate(oneLine(preview), max(l.width-6, 20)))

	return title + status + meta + "\n" + previewLine
}

// linkedLabels returns the labels of chunks linked to id, in label order.
func (l *ChunkList) linkedLabels(id string) string {
	labels := make(map[string]string, len(l.nodes))
	for _, n := range l.nodes {
		labels[n.ID] = n.Label
	}

	var linked []string
	for _, e := range l.edges {
		if !e.Touches(id) {
			continue
		}
		other := e.Target
		if other == id {
			other = e.Source
		}
		if label, ok := labels[other]; ok {
			linked = append(linked, label)
		}
	}
	sort.Slice(linked, func(i, j int) bool {
		if len(linked[i]) != len(linked[j]) {
			return len(linked[i]) < len(linked[j])
		}
		return linked[i] < linked[j]
	})
	return strings.Join(linked, ",")
}

// SetNodes replaces the chunks and edges, keeping the cursor on the same
// chunk when it still exists.
func (l *ChunkList) SetNodes(nodes []domain.Node, edges []domain.Edge) {
	current := l.CursorID()
	l.nodes = nodes
	l.edges = edges

	for i, n := range nodes {
		if n.ID == current {
			l.cursor = i
			return
		}
	}
	l.cursor = min(l.cursor, max(len(nodes)-1, 0))
}

// Nodes returns the current chunks.
func (l *ChunkList) Nodes() []domain.Node {
	return l.nodes
}

// Cursor returns the cursor index.
func (l *ChunkList) Cursor() int {
	return l.cursor
}

// CursorID returns the id of the chunk under the cursor, or "".
func (l *ChunkList) CursorID() string {
	if l.cursor < 0 || l.cursor >= len(l.nodes) {
		return ""
	}
	return l.nodes[l.cursor].ID
}

// MoveToID puts the cursor on id if it is listed.
func (l *ChunkList) MoveToID(id string) {
	for i, n := range l.nodes {
		if n.ID == id {
			l.cursor = i
			return
		}
	}
}

// SetSelectedID marks the board's selected chunk.
func (l *ChunkList) SetSelectedID(id string) {
	l.selectedID = id
}

// SetMarkedID marks the source of a link in progress. "" clears it.
func (l *ChunkList) SetMarkedID(id string) {
	l.markedID = id
}

// MarkedID returns the link source, or "".
func (l *ChunkList) MarkedID() string {
	return l.markedID
}

// MoveUp moves the cursor up.
func (l *ChunkList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// MoveDown moves the cursor down.
func (l *ChunkList) MoveDown() {
	if l.cursor < len(l.nodes)-1 {
		l.cursor++
	}
}

// SetDimensions sets the component dimensions.
func (l *ChunkList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of chunks.
func (l *ChunkList) Count() int {
	return len(l.nodes)
}

// IsEmpty returns whether the list is empty.
func (l *ChunkList) IsEmpty() bool {
	return len(l.nodes) == 0
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
