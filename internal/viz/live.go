package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/motive"
	"github.com/maren-k/orbitlab/internal/sim"
)

const (
	canvasWidth     = 70
	canvasHeight    = 22
	trailCapacity   = 800
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	faultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

type point struct{ x, y float64 }

// Model advances the universe on a frame timer and plots the XY plane.
type Model struct {
	u             *sim.Universe
	ids           []body.ID
	t, dt         float64
	stepsPerFrame int
	fps           int
	running       bool
	selected      int
	canvas        *Canvas
	trails        map[body.ID][]point
	radialHistory []float64
	err           error
}

func NewModel(u *sim.Universe, dt float64, fps int) Model {
	if fps < 1 {
		fps = 30
	}
	return Model{
		u:             u,
		ids:           u.Bodies(),
		dt:            dt,
		stepsPerFrame: 1,
		fps:           fps,
		running:       true,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		trails:        make(map[body.ID][]point),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab":
			if len(m.ids) > 0 {
				m.selected = (m.selected + 1) % len(m.ids)
				m.radialHistory = m.radialHistory[:0]
			}
		case "+", "=":
			m.stepsPerFrame *= 2
			if m.stepsPerFrame > 1024 {
				m.stepsPerFrame = 1024
			}
		case "-", "_":
			m.stepsPerFrame /= 2
			if m.stepsPerFrame < 1 {
				m.stepsPerFrame = 1
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.u.Advance(m.t, m.dt); err != nil {
			m.err = err
		}
		m.t += m.dt
	}

	for _, id := range m.ids {
		st, err := m.u.State(id)
		if err != nil {
			continue
		}
		tr := append(m.trails[id], point{st.CurrentPosition.X, st.CurrentPosition.Y})
		if len(tr) > trailCapacity {
			tr = tr[1:]
		}
		m.trails[id] = tr
	}

	if len(m.ids) > 0 {
		st, err := m.u.State(m.ids[m.selected])
		if err == nil {
			m.radialHistory = append(m.radialHistory, st.CurrentPosition.Norm())
			if len(m.radialHistory) > historyCapacity {
				m.radialHistory = m.radialHistory[1:]
			}
		}
	}
}

// draw projects all trails into the canvas, autoscaled to their bounds.
func (m *Model) draw() {
	m.canvas.Clear()

	var minX, maxX, minY, maxY float64
	first := true
	for _, tr := range m.trails {
		for _, p := range tr {
			if first {
				minX, maxX, minY, maxY = p.x, p.x, p.y, p.y
				first = false
				continue
			}
			if p.x < minX {
				minX = p.x
			}
			if p.x > maxX {
				maxX = p.x
			}
			if p.y < minY {
				minY = p.y
			}
			if p.y > maxY {
				maxY = p.y
			}
		}
	}
	if first {
		return
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	rangeX *= 1.2
	minY -= rangeY * 0.1
	rangeY *= 1.2

	cw := float64(canvasWidth * 2)
	ch := float64(canvasHeight * 4)
	px := func(p point) (int, int) {
		return int((p.x - minX) / rangeX * (cw - 1)), int(ch - 1 - (p.y-minY)/rangeY*(ch-1))
	}

	for _, id := range m.ids {
		tr := m.trails[id]
		for _, p := range tr {
			x, y := px(p)
			m.canvas.Set(x, y)
		}
		if len(tr) > 0 {
			x, y := px(tr[len(tr)-1])
			m.canvas.Blob(x, y)
		}
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("ORBITLAB") + "\n")
	if m.running {
		s.WriteString("RUNNING\n\n")
	} else {
		s.WriteString("PAUSED\n\n")
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(formatDuration(m.t)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%gs x%d", m.dt, m.stepsPerFrame)) + "\n")

	s.WriteString("\nBODIES\n")
	for i, id := range m.ids {
		info, err := m.u.Info(id)
		if err != nil {
			continue
		}
		line := fmt.Sprintf("%-12s %s", info.DisplayName(), m.bodyStatus(id))
		switch {
		case m.u.Fault(id) != nil:
			s.WriteString(faultStyle.Render("! "+line) + "\n")
		case i == m.selected:
			s.WriteString(selectStyle.Render("> "+line) + "\n")
		default:
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	if len(m.radialHistory) > 1 {
		chart := asciigraph.Plot(m.radialHistory, asciigraph.Height(4), asciigraph.Width(32), asciigraph.Caption("|r|"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if m.err != nil {
		s.WriteString(faultStyle.Render(fmt.Sprintf("\n%v", m.err)) + "\n")
	}

	s.WriteString(helpStyle.Render("\nSP:Pause Tab:Select +/-:Speed Q:Quit"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func (m Model) bodyStatus(id body.ID) string {
	mo, err := m.u.Motive(id)
	if err != nil {
		return "?"
	}
	seg, _, err := mo.ActiveAt(m.t)
	if err != nil {
		return "?"
	}
	switch seg.Model.Kind {
	case motive.KindFixed:
		return "fixed"
	case motive.KindKeplerian:
		return "keplerian"
	case motive.KindNewtonian:
		return "newtonian"
	}
	return "?"
}

func formatDuration(t float64) string {
	switch {
	case t >= 86400:
		return fmt.Sprintf("%.2fd", t/86400)
	case t >= 3600:
		return fmt.Sprintf("%.2fh", t/3600)
	}
	return fmt.Sprintf("%.1fs", t)
}

// Run starts the live view and blocks until the user quits.
func Run(u *sim.Universe, dt float64, fps int) error {
	p := tea.NewProgram(NewModel(u, dt, fps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
