package plugin

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/b/panejump/pkg/colors"
)

// Style controls how the pane list is drawn.
type Style struct {
	SelectedFg  string
	SelectedBg  string
	StarMarker  string
	FocusMarker string
}

const defaultStarMarker = " *"

func (s Style) withDefaults() Style {
	if s.StarMarker == "" {
		s.StarMarker = defaultStarMarker
	}
	return s
}

func (s Style) selected() lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	if s.SelectedFg == "" && s.SelectedBg == "" {
		return st.Reverse(true)
	}
	if s.SelectedBg != "" {
		st = st.Background(lipgloss.Color(s.SelectedBg))
	}
	if fg := s.selectedFg(); fg != "" {
		st = st.Foreground(lipgloss.Color(fg))
	}
	return st
}

// selectedFg picks a readable foreground when the background is a hex
// color: black or white when none is set, otherwise the configured one
// nudged until it contrasts.
func (s Style) selectedFg() string {
	if s.SelectedFg == "" {
		fg, _ := colors.ReadableOn(s.SelectedBg)
		return fg
	}
	return colors.EnsureContrast(s.SelectedFg, s.SelectedBg, colors.MinContrast)
}

// Lines returns the unstyled list rows, one per pane.
func (c *Controller) Lines() []string {
	panes := c.registry.Panes()
	current, hasCurrent := c.registry.Focus().Current()
	pad := strings.Repeat(" ", runewidth.StringWidth(c.style.FocusMarker))

	lines := make([]string, 0, len(panes))
	for _, p := range panes {
		var b strings.Builder
		if c.style.FocusMarker != "" {
			if hasCurrent && p.ID == current {
				b.WriteString(c.style.FocusMarker)
			} else {
				b.WriteString(pad)
			}
		}
		b.WriteString(p.TabName)
		b.WriteString(" ")
		b.WriteString(p.Title)
		if c.stars.Has(p.ID) {
			b.WriteString(c.style.StarMarker)
		}
		lines = append(lines, b.String())
	}
	return lines
}

// View is an immutable snapshot of what the list shows. It can be rendered
// away from the goroutine that owns the Controller.
type View struct {
	Lines    []string
	Selected int
	Style    Style
}

// View snapshots the current list.
func (c *Controller) View() View {
	return View{Lines: c.Lines(), Selected: c.selected, Style: c.style}
}

// Render draws the current list; see View.Render.
func (c *Controller) Render(rows, cols int) string {
	return c.View().Render(rows, cols)
}

// Render draws at most rows lines clipped to cols columns, keeping the
// selected row in view. Non-positive rows or cols disable that limit.
func (v View) Render(rows, cols int) string {
	if len(v.Lines) == 0 {
		return ""
	}

	start, end := 0, len(v.Lines)
	if rows > 0 && rows < len(v.Lines) {
		if v.Selected >= rows {
			start = v.Selected - rows + 1
		}
		end = start + rows
	}

	selected := v.Style.selected()
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := v.Lines[i]
		if cols > 0 {
			line = runewidth.Truncate(line, cols, "…")
		}
		if i == v.Selected {
			line = selected.Render(line)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
