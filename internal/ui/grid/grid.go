package grid

import (
	"fmt"
	"rebalance/internal/domain"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Row is one record. Fields not named by a column are carried through
// updates untouched.
type Row map[string]any

type Column struct {
	Header string
	Key    string
}

// Grid renders rows under an ordered set of columns. In edit mode cells can
// be typed into; a cell's text is held locally until the cell loses focus,
// at which point onUpdate receives the full row sequence.
type Grid struct {
	rows     []Row
	columns  []Column
	edit     bool
	onUpdate func([]Row)

	focusRow int
	focusCol int
	// nil while the focused cell is idle
	pending *string
}

func New(data []Row, columns []Column, edit bool, onUpdate func([]Row)) *Grid {
	return &Grid{
		rows:     copyRows(data),
		columns:  append([]Column{}, columns...),
		edit:     edit,
		onUpdate: onUpdate,
	}
}

func copyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		row := make(Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		out[i] = row
	}
	return out
}

func (g *Grid) Rows() []Row {
	return copyRows(g.rows)
}

func (g *Grid) Columns() []Column {
	return append([]Column{}, g.columns...)
}

func (g *Grid) Editing() bool {
	return g.edit
}

func (g *Grid) Focus() (row, col int) {
	return g.focusRow, g.focusCol
}

// Pending reports the uncommitted text of the focused cell.
func (g *Grid) Pending() (string, bool) {
	if g.pending == nil {
		return "", false
	}
	return *g.pending, true
}

// SetData replaces the displayed rows. An edit in progress survives the
// resync as long as its row still exists.
func (g *Grid) SetData(data []Row) {
	g.rows = copyRows(data)
	g.clampFocus()
}

func (g *Grid) SetColumns(columns []Column) {
	g.columns = append([]Column{}, columns...)
	g.clampFocus()
}

// SetEdit toggles edit mode. Leaving edit mode drops any uncommitted text.
func (g *Grid) SetEdit(edit bool) {
	if !edit {
		g.pending = nil
	}
	g.edit = edit
}

func (g *Grid) clampFocus() {
	if g.focusRow >= len(g.rows) {
		g.focusRow = len(g.rows) - 1
		g.pending = nil
	}
	if g.focusRow < 0 {
		g.focusRow = 0
	}
	if g.focusCol >= len(g.columns) {
		g.focusCol = len(g.columns) - 1
		g.pending = nil
	}
	if g.focusCol < 0 {
		g.focusCol = 0
	}
}

func (g *Grid) emit() {
	if g.onUpdate != nil {
		g.onUpdate(g.Rows())
	}
}

// AddRow appends a row holding an empty string under every column key.
func (g *Grid) AddRow() {
	if !g.edit {
		return
	}
	g.Blur()
	row := Row{}
	for _, c := range g.columns {
		row[c.Key] = ""
	}
	g.rows = append(g.rows, row)
	g.emit()
}

func (g *Grid) DeleteRow(i int) {
	if !g.edit || i < 0 || i >= len(g.rows) {
		return
	}
	if i == g.focusRow {
		g.pending = nil
	} else {
		g.Blur()
	}
	g.rows = append(g.rows[:i:i], g.rows[i+1:]...)
	g.clampFocus()
	g.emit()
}

// Type appends text to the focused cell without committing it.
func (g *Grid) Type(s string) {
	if !g.edit || !g.hasCell() {
		return
	}
	if g.pending == nil {
		current := g.CellText(g.focusRow, g.focusCol)
		g.pending = &current
	}
	*g.pending += s
}

func (g *Grid) Backspace() {
	if !g.edit || !g.hasCell() {
		return
	}
	if g.pending == nil {
		current := g.CellText(g.focusRow, g.focusCol)
		g.pending = &current
	}
	runes := []rune(*g.pending)
	if len(runes) > 0 {
		*g.pending = string(runes[:len(runes)-1])
	}
}

// Blur commits the focused cell if it has uncommitted text.
func (g *Grid) Blur() {
	if g.pending == nil {
		return
	}
	value := *g.pending
	g.pending = nil
	if !g.edit || !g.hasCell() {
		return
	}

	rows := copyRows(g.rows)
	rows[g.focusRow][g.columns[g.focusCol].Key] = value
	g.rows = rows
	g.emit()
}

// MoveFocus blurs the current cell and focuses another one.
func (g *Grid) MoveFocus(row, col int) {
	g.Blur()
	g.focusRow = row
	g.focusCol = col
	g.clampFocus()
}

func (g *Grid) hasCell() bool {
	return g.focusRow >= 0 && g.focusRow < len(g.rows) &&
		g.focusCol >= 0 && g.focusCol < len(g.columns)
}

func (g *Grid) CellText(row, col int) string {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.columns) {
		return ""
	}
	return formatValue(g.rows[row][g.columns[col].Key])
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return domain.FormatFloat(t)
	}
	return fmt.Sprint(v)
}

// Update handles cell navigation and editing keys. Keys are ignored
// outside edit mode.
func (g *Grid) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !g.edit {
		return nil
	}

	switch keyMsg.Type {
	case tea.KeyRunes:
		g.Type(string(keyMsg.Runes))
		return nil
	case tea.KeySpace:
		g.Type(" ")
		return nil
	}

	switch keyMsg.String() {
	case "up":
		g.MoveFocus(g.focusRow-1, g.focusCol)
	case "down":
		g.MoveFocus(g.focusRow+1, g.focusCol)
	case "left":
		g.MoveFocus(g.focusRow, g.focusCol-1)
	case "right":
		g.MoveFocus(g.focusRow, g.focusCol+1)
	case "tab":
		if g.focusCol+1 < len(g.columns) {
			g.MoveFocus(g.focusRow, g.focusCol+1)
		} else {
			g.MoveFocus(g.focusRow+1, 0)
		}
	case "shift+tab":
		if g.focusCol > 0 {
			g.MoveFocus(g.focusRow, g.focusCol-1)
		} else {
			g.MoveFocus(g.focusRow-1, len(g.columns)-1)
		}
	case "enter":
		g.Blur()
	case "backspace":
		g.Backspace()
	case "ctrl+n":
		g.AddRow()
		g.MoveFocus(len(g.rows)-1, 0)
	case "ctrl+d":
		g.DeleteRow(g.focusRow)
	}
	return nil
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	focusedStyle = cellStyle.Reverse(true)
	hintStyle    = lipgloss.NewStyle().Faint(true)
)

func (g *Grid) View() string {
	headers := make([]string, len(g.columns))
	for i, c := range g.columns {
		headers[i] = c.Header
	}

	cells := make([][]string, len(g.rows))
	for r := range g.rows {
		line := make([]string, len(g.columns))
		for c := range g.columns {
			line[c] = g.CellText(r, c)
			if g.edit && r == g.focusRow && c == g.focusCol && g.pending != nil {
				line[c] = *g.pending + "_"
			}
		}
		cells[r] = line
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if g.edit && row == g.focusRow && col == g.focusCol {
				return focusedStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(t.Render())
	if g.edit {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("ctrl+n add row • ctrl+d delete row • tab/arrows move"))
	}
	return b.String()
}
