package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/selection"
	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
	"github.com/matzehuels/plotmap/pkg/render/styles"
)

// Each terminal cell of the map stands for a block of virtual pixels, so
// the engine sees a viewport of roughly the browser's proportions.
const (
	cellPxW = 8
	cellPxH = 16

	panelWidth = 34
	panStep    = 32

	dimFill = "#262626"
)

var (
	mapTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	mapPanelStyle = lipgloss.NewStyle().Width(panelWidth).PaddingLeft(1)
	mapKeyStyle   = lipgloss.NewStyle().Foreground(colorGray).Width(8)
	mapHintStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// MapModel - Interactive site plan
// =============================================================================

// animTickMsg fires when the next sweep step is due. Ticks scheduled for an
// older generation are dropped.
type animTickMsg struct{ gen uint64 }

// glyph is one rasterised terminal cell. id is the parcel under it, or 0.
type glyph struct {
	ch     rune
	fg, bg string
	bold   bool
	id     int
}

// MapModel is the bubbletea model of the terminal map viewer. It owns the
// engine; bubbletea serializes every Update, so no locking is needed.
type MapModel struct {
	eng    *engine.Engine
	site   layout.Site
	search textinput.Model

	width  int
	height int
	status string

	pressed bool
	moved   bool
	pressAt view.Point
}

// NewMapModel creates a viewer over eng.
func NewMapModel(eng *engine.Engine) MapModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "plot number"
	ti.CharLimit = 16
	return MapModel{
		eng:    eng,
		site:   eng.Site(),
		search: ti,
		status: "ready",
	}
}

// Init resumes an animation that was started before the program ran.
func (m MapModel) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m MapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case animTickMsg:
		if msg.gen != m.eng.Generation() {
			return m, nil
		}
		m.eng.Tick()
		return m, m.scheduleTick()
	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg), nil
	}
	return m, nil
}

// scheduleTick arms a tick for the next due step of the current sweep.
func (m MapModel) scheduleTick() tea.Cmd {
	d, ok := m.eng.NextDue()
	if !ok {
		return nil
	}
	gen := m.eng.Generation()
	return tea.Tick(d, func(time.Time) tea.Msg { return animTickMsg{gen: gen} })
}

func (m MapModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.search.Blur()
		m.status = fmt.Sprintf("%d matches", m.matchCount())
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.eng.SearchInput("")
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.eng.SearchInput(m.search.Value())
	return m, cmd
}

func (m MapModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.panBy(0, panStep)
	case "down", "j":
		m.panBy(0, -panStep)
	case "left", "h":
		m.panBy(panStep, 0)
	case "right", "l":
		m.panBy(-panStep, 0)
	case "+", "=":
		m.eng.Wheel(-1)
	case "-", "_":
		m.eng.Wheel(1)
	case "n":
		m.eng.ToggleNorthUp()
	case "t":
		m.eng.ToggleFlat()
	case "s":
		m.eng.ToggleStatusView()
		return m, m.scheduleTick()
	case "f":
		m.eng.FinishAnimation()
	case "/":
		return m, m.search.Focus()
	case "esc":
		m.eng.ClickBackground()
		m.eng.SearchInput("")
		m.search.SetValue("")
		m.status = "cleared"
	case "r":
		m.eng.Reset()
		m.status = "view reset"
	}
	return m, nil
}

// panBy pans with a synthetic drag, the same path a mouse drag takes.
func (m MapModel) panBy(dx, dy float64) {
	m.eng.PointerDown(view.Point{})
	m.eng.PointerMove(view.Point{X: dx, Y: dy})
	m.eng.PointerUp()
}

// updateMouse maps terminal mouse events onto pointer events. A press and
// release on the same cell is a click.
func (m MapModel) updateMouse(msg tea.MouseMsg) MapModel {
	cols, rows := m.mapSize()
	col, row := msg.X, msg.Y-1
	inside := col >= 0 && col < cols && row >= 0 && row < rows
	p := screenPoint(col, row)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if inside {
			m.eng.Wheel(-1)
		}
	case msg.Button == tea.MouseButtonWheelDown:
		if inside {
			m.eng.Wheel(1)
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inside {
			m.pressed, m.moved, m.pressAt = true, false, p
			m.eng.PointerDown(p)
		}
	case msg.Action == tea.MouseActionMotion && m.pressed:
		if !inside {
			m.pressed = false
			m.eng.PointerLeave()
			return m
		}
		if p != m.pressAt {
			m.moved = true
		}
		m.eng.PointerMove(p)
	case msg.Action == tea.MouseActionRelease && m.pressed:
		m.pressed = false
		m.eng.PointerUp()
		if m.moved || !inside {
			return m
		}
		if id, ok := m.eng.ClickAt(m.viewport(), p); ok {
			m.status = "plot " + strconv.Itoa(id)
		} else {
			m.status = "selection cleared"
		}
	}
	return m
}

// =============================================================================
// Geometry
// =============================================================================

// mapSize returns the map area in terminal cells: everything left of the
// panel between the title and footer lines.
func (m MapModel) mapSize() (cols, rows int) {
	return max(10, m.width-panelWidth), max(4, m.height-2)
}

// viewport is the map area in virtual pixels.
func (m MapModel) viewport() view.Size {
	cols, rows := m.mapSize()
	return view.Size{W: float64(cols * cellPxW), H: float64(rows * cellPxH)}
}

// screenPoint is the centre of a map cell in virtual pixels.
func screenPoint(col, row int) view.Point {
	return view.Point{
		X: float64(col*cellPxW) + cellPxW/2,
		Y: float64(row*cellPxH) + cellPxH/2,
	}
}

func (m MapModel) matchCount() int {
	n := 0
	for _, id := range m.eng.Resolver().IDs() {
		if m.eng.MatchesSearch(id) {
			n++
		}
	}
	return n
}

// =============================================================================
// Rendering
// =============================================================================

func (m MapModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	cols, rows := m.mapSize()

	st := m.eng.View()
	title := mapTitleStyle.Render(" "+appName+" ") +
		StyleDim.Render(fmt.Sprintf(" %s · zoom %.2f", st.Mode, st.Zoom))

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderMap(cols, rows), m.renderPanel(rows))

	footer := mapHintStyle.Render(" arrows pan  +/- zoom  n north-up  t flat  s status  f finish  / search  esc clear  r reset  q quit")
	if m.search.Focused() {
		footer = " " + m.search.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body, footer)
}

func (m MapModel) renderMap(cols, rows int) string {
	grid := m.rasterize(cols, rows)
	var b strings.Builder
	for r, line := range grid {
		if r > 0 {
			b.WriteByte('\n')
		}
		writeRuns(&b, line)
	}
	return b.String()
}

// rasterize samples the site under every map cell through the inverse
// screen transform, then stamps parcel numbers where they fit.
func (m MapModel) rasterize(cols, rows int) [][]glyph {
	tr := m.eng.ScreenTransform(m.viewport(), engine.Content)
	res := m.eng.Resolver()
	statusOn := m.eng.StatusView()

	grid := make([][]glyph, rows)
	for r := range grid {
		grid[r] = make([]glyph, cols)
		for c := range grid[r] {
			g := glyph{ch: ' '}
			if site, ok := tr.Invert(screenPoint(c, r)); ok {
				if id, hit := res.HitTest(site.X, site.Y); hit {
					g = m.parcelGlyph(id, statusOn)
				} else if f, ok := m.featureAt(site); ok {
					g.bg = styles.FeatureFill(f.Kind)
				} else if site.X >= 0 && site.Y >= 0 && site.X <= m.site.Width && site.Y <= m.site.Height {
					g.bg = styles.Background
				}
			}
			grid[r][c] = g
		}
	}
	m.stampLabels(grid, tr)
	return grid
}

func (m MapModel) parcelGlyph(id int, statusOn bool) glyph {
	st, _ := m.eng.DisplayedStatus(id)
	c := styles.For(st, statusOn)
	g := glyph{ch: ' ', fg: c.Text, bg: c.Fill, id: id}
	switch m.eng.Emphasis(id) {
	case selection.Selected:
		g.fg, g.bg, g.bold = styles.Background, styles.SelectedStroke, true
	case selection.Matched:
		g.bold = true
	case selection.Dimmed:
		g.fg, g.bg = c.Fill, dimFill
	}
	return g
}

// featureAt returns the topmost static feature at a site point.
func (m MapModel) featureAt(p view.Point) (layout.Feature, bool) {
	for i := len(m.site.Features) - 1; i >= 0; i-- {
		if f := m.site.Features[i]; f.Rect.Contains(p.X, p.Y) {
			return f, true
		}
	}
	return layout.Feature{}, false
}

// stampLabels writes each parcel number centred on its projected cell when
// every character lands on that parcel.
func (m MapModel) stampLabels(grid [][]glyph, tr view.Transform) {
	res := m.eng.Resolver()
	for _, id := range res.IDs() {
		cell, err := res.Resolve(id)
		if err != nil {
			continue
		}
		p, ok := tr.Project(view.Point{X: cell.CenterX(), Y: cell.CenterY()})
		if !ok || p.X < 0 || p.Y < 0 {
			continue
		}
		row, col := int(p.Y/cellPxH), int(p.X/cellPxW)
		label := strconv.Itoa(id)
		start := col - (len(label)-1)/2
		if row >= len(grid) || start < 0 || start+len(label) > len(grid[row]) {
			continue
		}
		fits := true
		for i := range label {
			if grid[row][start+i].id != id {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}
		for i, ch := range label {
			grid[row][start+i].ch = ch
		}
	}
}

// writeRuns renders a row, styling runs of equal glyph styles together.
func writeRuns(b *strings.Builder, line []glyph) {
	start := 0
	for i := 1; i <= len(line); i++ {
		if i < len(line) && line[i].sameStyle(line[start]) {
			continue
		}
		run := make([]rune, 0, i-start)
		for _, g := range line[start:i] {
			run = append(run, g.ch)
		}
		b.WriteString(line[start].style().Render(string(run)))
		start = i
	}
}

func (g glyph) sameStyle(o glyph) bool {
	return g.fg == o.fg && g.bg == o.bg && g.bold == o.bold
}

func (g glyph) style() lipgloss.Style {
	s := lipgloss.NewStyle().Bold(g.bold)
	if g.fg != "" {
		s = s.Foreground(lipgloss.Color(g.fg))
	}
	if g.bg != "" {
		s = s.Background(lipgloss.Color(g.bg))
	}
	return s
}

func (m MapModel) renderPanel(rows int) string {
	var b strings.Builder
	st := m.eng.View()

	row := func(k, v string) {
		b.WriteString(mapKeyStyle.Render(k) + " " + StyleValue.Render(v) + "\n")
	}

	b.WriteString(StyleTitle.Render("View") + "\n")
	row("mode", string(st.Mode))
	row("zoom", fmt.Sprintf("%.2f×", st.Zoom))
	row("pan", fmt.Sprintf("%.0f, %.0f", st.Pan.X, st.Pan.Y))

	status := "off"
	if m.eng.StatusView() {
		status = "on"
	}
	if m.eng.Animating() {
		status += ", sweeping"
	}
	row("status", status)
	if q := m.eng.Search(); q != "" {
		row("search", fmt.Sprintf("%q (%d)", q, m.matchCount()))
	}
	b.WriteString("\n")

	if card, ok := m.eng.SelectedCard(); ok {
		b.WriteString(renderCard(card) + "\n")
	} else {
		b.WriteString(StyleDim.Render("Click a plot for details") + "\n")
	}
	if m.eng.StatusView() {
		b.WriteString("\n" + renderLegend() + "\n")
	}
	b.WriteString("\n" + StyleDim.Render(m.status))

	return mapPanelStyle.Height(rows).Render(b.String())
}
