package cli

import (
	"fmt"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/voxhive/callflow/pkg/editor"
	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/flow/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// sessionChangedMsg tells the model the session state moved underneath it:
// an applied command, an undo, or an asynchronous validation result.
type sessionChangedMsg struct{}

// maxVisibleEdges bounds the edge list so the node table keeps room.
const maxVisibleEdges = 6

// =============================================================================
// editModel - Interactive workflow editor
// =============================================================================

// editModel is the bubbletea model for the workflow editor. It renders
// snapshots of the editing session and translates key presses into
// session operations; all workflow state lives in the session.
type editModel struct {
	sess    *editor.Session
	focused *atomic.Bool

	// layoutOpts seeds the auto-layout key. The zero value selects the
	// engine defaults.
	layoutOpts layout.Options

	nodes []*flow.Node
	edges []flow.Edge

	cursor int
	offset int
	height int

	renaming  bool
	nameInput string

	connectFrom string
	status      string
}

// newEditModel creates the editor model over an open session.
func newEditModel(sess *editor.Session, focused *atomic.Bool) editModel {
	m := editModel{
		sess:    sess,
		focused: focused,
		height:  12,
	}
	return m.refreshed()
}

// refreshed pulls a fresh snapshot from the session and clamps the cursor.
func (m editModel) refreshed() editModel {
	g := m.sess.State()
	m.nodes = g.Nodes()
	m.edges = g.Edges()
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m
}

// selected returns the node under the cursor, or nil on an empty graph.
func (m editModel) selected() *flow.Node {
	if len(m.nodes) == 0 || m.cursor >= len(m.nodes) {
		return nil
	}
	return m.nodes[m.cursor]
}

func (m editModel) Init() tea.Cmd {
	return nil
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionChangedMsg:
		return m.refreshed(), nil

	case tea.WindowSizeMsg:
		m.height = msg.Height - 14
		if m.height < 5 {
			m.height = 5
		}
		return m.refreshed(), nil

	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

// updateRename drives the hand-rolled name input. While it is active the
// session sees TextInputFocused() == true and ignores editor shortcuts.
func (m editModel) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if name := strings.TrimSpace(m.nameInput); name != "" {
			m.sess.Rename(name)
		}
		m.renaming = false
		m.focused.Store(false)
	case "esc":
		m.renaming = false
		m.focused.Store(false)
	case "backspace":
		if runes := []rune(m.nameInput); len(runes) > 0 {
			m.nameInput = string(runes[:len(runes)-1])
		}
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.nameInput += string(msg.Runes)
		case tea.KeySpace:
			m.nameInput += " "
		}
	}
	return m, nil
}

func (m editModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modifier shortcuts belong to the session.
	if key, ok := editorKey(msg); ok {
		if m.sess.HandleKey(key) {
			return m, nil
		}
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}

	case "down", "j":
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}

	case "a":
		return m.addNode(flow.KindAgent), nil
	case "E":
		return m.addNode(flow.KindEnd), nil
	case "g":
		return m.addNode(flow.KindGlobal), nil
	case "t":
		return m.addNode(flow.KindTrigger), nil
	case "w":
		return m.addNode(flow.KindWebhook), nil

	case "x":
		n := m.selected()
		if n == nil {
			break
		}
		err := m.sess.OnNodesChange([]editor.NodeChange{{Type: editor.NodeRemove, ID: n.ID}})
		m.status = opStatus("removed "+n.ID, err)

	case "c":
		n := m.selected()
		if n == nil {
			break
		}
		if m.connectFrom == "" {
			m.connectFrom = n.ID
			m.status = "connecting from " + n.ID + ": select the target and press c"
			break
		}
		id, err := m.sess.OnConnect(m.connectFrom, n.ID)
		m.status = opStatus("connected "+id, err)
		m.connectFrom = ""

	case "u":
		if !m.sess.Undo() {
			m.status = "nothing to undo"
		}

	case "U":
		if !m.sess.Redo() {
			m.status = "nothing to redo"
		}

	case "r":
		m.renaming = true
		m.nameInput = m.sess.Name()
		m.focused.Store(true)

	case "l":
		err := m.sess.ApplyLayout(m.layoutOpts)
		m.status = opStatus("layout applied", err)

	case "v":
		m.sess.Validate()
		m.status = "validating..."
	}

	return m, nil
}

func (m editModel) addNode(kind flow.Kind) editModel {
	id, err := m.sess.AddNode(kind, nextPosition(len(m.nodes)))
	m.status = opStatus("added "+id, err)
	return m
}

// nextPosition staggers new nodes on a coarse grid so they never stack.
func nextPosition(count int) flow.Position {
	return flow.Position{
		X: float64(count%5) * 180,
		Y: float64(count/5) * 140,
	}
}

func opStatus(ok string, err error) string {
	if err != nil {
		return err.Error()
	}
	return ok
}

// editorKey translates a bubbletea key event into the session's shortcut
// form. Only the edit-modifier combinations are session business.
func editorKey(msg tea.KeyMsg) (editor.Key, bool) {
	switch msg.String() {
	case "ctrl+z":
		return editor.Key{Name: "z", Mod: true}, true
	case "ctrl+shift+z":
		return editor.Key{Name: "z", Mod: true, Shift: true}, true
	case "ctrl+y":
		return editor.Key{Name: "y", Mod: true}, true
	case "ctrl+s":
		return editor.Key{Name: "s", Mod: true}, true
	}
	return editor.Key{}, false
}

// =============================================================================
// View
// =============================================================================

func (m editModel) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")
	b.WriteString(m.viewNodes())
	b.WriteString("\n")
	b.WriteString(m.viewEdges())
	b.WriteString(m.viewWorkflowErrors())
	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	return b.String()
}

func (m editModel) viewHeader() string {
	name := m.sess.Name()
	if name == "" {
		name = "(unnamed)"
	}

	header := StyleTitle.Render("Callflow ▸ "+name) + "  " + listDimStyle.Render(m.sess.WorkflowID())
	if m.sess.Dirty() {
		header += "  " + StyleWarning.Render("● unsaved")
	} else {
		header += "  " + StyleSuccess.Render("✓ saved")
	}

	if m.renaming {
		header += "\n" + StyleHighlight.Render("Name: ") + m.nameInput + StyleHighlight.Render("▌") +
			listDimStyle.Render("  enter apply · esc cancel")
	}
	return header
}

func (m editModel) viewNodes() string {
	if len(m.nodes) == 0 {
		return listDimStyle.Render("  empty workflow: press a to add an agent node")
	}

	end := m.offset + m.height
	if end > len(m.nodes) {
		end = len(m.nodes)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		if n.ID == m.connectFrom {
			cursor = "◆ "
		}

		label := n.Data.Label
		if label == "" {
			label = "—"
		}

		check := ""
		if n.Data.Invalid {
			check = iconError + " " + n.Data.ValidationMessage
		}

		pos := fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y)
		rows = append(rows, []string{cursor, n.ID, n.Kind.String(), label, pos, check})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Kind", "Label", "Position", "Validation").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.nodes) {
				return lipgloss.NewStyle()
			}
			n := m.nodes[idx]

			if col == 5 && n.Data.Invalid {
				return StyleError
			}
			if idx == m.cursor {
				return listSelectedStyle
			}
			if n.Data.SelectedThroughEdge || n.Data.HoveredThroughEdge {
				return StyleHighlight
			}
			if col == 2 {
				return kindStyle(n.Kind)
			}
			if col == 4 {
				return listDimStyle
			}
			return StyleValue
		})

	counter := listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes)))
	return t.Render() + "\n" + counter
}

func (m editModel) viewEdges() string {
	if len(m.edges) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(listDimStyle.Render("  edges") + "\n")

	shown := len(m.edges)
	if shown > maxVisibleEdges {
		shown = maxVisibleEdges
	}
	for _, e := range m.edges[:shown] {
		line := fmt.Sprintf("  %s  %s %s %s", e.ID, e.Source, iconArrow, e.Target)
		if e.Data.Condition != "" {
			line += "  [" + e.Data.Condition + "]"
		} else {
			line += "  [always]"
		}
		if e.Data.Invalid {
			b.WriteString(StyleError.Render(line+"  "+iconError+" "+e.Data.ValidationMessage) + "\n")
		} else {
			b.WriteString(listDimStyle.Render(line) + "\n")
		}
	}
	if len(m.edges) > shown {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  (+%d more)", len(m.edges)-shown)) + "\n")
	}
	return b.String()
}

func (m editModel) viewWorkflowErrors() string {
	errs := m.sess.WorkflowErrors()
	if len(errs) == 0 {
		return ""
	}

	var b strings.Builder
	for _, e := range errs {
		b.WriteString(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(e.Message) + "\n")
	}
	return b.String()
}

func (m editModel) viewFooter() string {
	var b strings.Builder

	if m.status != "" {
		b.WriteString(listDimStyle.Render("  "+m.status) + "\n")
	}

	counts := StyleNumber.Render(fmt.Sprintf("%d", len(m.nodes))) + listDimStyle.Render(" nodes · ") +
		StyleNumber.Render(fmt.Sprintf("%d", len(m.edges))) + listDimStyle.Render(" edges")
	history := ""
	if m.sess.CanUndo() {
		history += " · undo"
	}
	if m.sess.CanRedo() {
		history += " · redo"
	}
	b.WriteString("  " + counts + listDimStyle.Render(history) + "\n")

	b.WriteString(listDimStyle.Render("  ↑/↓ move · a/E/g/t/w add · c connect · x delete · u/U undo/redo · r rename · l layout · v validate · ctrl+s save · q quit"))
	return b.String()
}
