package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/mrac/internal/config"
	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/experiment"
	"github.com/san-kum/mrac/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateMenu state = iota
	stateSim
)

const (
	maxTrail   = 400
	maxHistory = 120
)

type model struct {
	state    state
	cursor   int
	presets  []string
	selected string
	logger   *zap.SugaredLogger

	sess    *sim.Session
	last    sim.Sample
	trail   []r2.Point
	history []float64
	paused  bool
	speed   float64
	err     error

	lastFrame time.Time
	fps       float64

	width  int
	height int
}

// NewInteractiveApp lists the scenario presets; selecting one runs it.
func NewInteractiveApp(logger *zap.SugaredLogger) *model {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		logger:  logger,
		speed:   1.0,
		width:   80,
		height:  30,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(20*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim || m.sess == nil {
			return m, nil
		}
		if !m.paused && m.err == nil {
			now := time.Time(msg)
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			steps := int(m.speed)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps && !m.sess.Done() && m.err == nil; i++ {
				m.step()
			}
			if m.sess.Done() {
				m.paused = true
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.start()
		m.state = stateSim
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
		m.reset()
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.start()
		return m, tea.ClearScreen
	case "h":
		// hold station where the vessel is now
		if m.sess != nil {
			p := m.last.Vehicle.Pose
			m.sess.Inject(dynamo.WaypointCommand{X: p.Position.X, Y: p.Position.Y, HeadingDeg: degrees(p.Heading())})
		}
	case "+", "=":
		m.speed = math.Min(m.speed*2, 64)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 1)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

func (m *model) start() {
	m.reset()
	m.speed = 1.0
	m.paused = false

	cfg := config.GetPreset(m.selected)
	if cfg == nil {
		m.err = fmt.Errorf("unknown preset %q", m.selected)
		return
	}
	exp, err := experiment.New(cfg, m.logger)
	if err != nil {
		m.err = err
		return
	}
	m.sess, m.err = exp.Session()
}

func (m *model) reset() {
	m.sess = nil
	m.last = sim.Sample{}
	m.trail = make([]r2.Point, 0, maxTrail)
	m.history = make([]float64, 0, maxHistory)
	m.err = nil
	m.lastFrame = time.Time{}
}

func (m *model) step() {
	sample, err := m.sess.Step()
	if err != nil {
		m.err = err
		return
	}
	m.last = sample
	m.trail = append(m.trail, sample.Vehicle.Pose.Position)
	if len(m.trail) > maxTrail {
		m.trail = m.trail[1:]
	}
	// one history point per simulated second
	if sample.Step%int(math.Max(1, math.Round(1/m.sess.Config().Dt))) == 0 {
		m.history = append(m.history, sample.GoalDistance())
		if len(m.history) > maxHistory {
			m.history = m.history[1:]
		}
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("             " + cyan.Render("m r a c") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := config.Presets[name].Description
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-14s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-14s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")
	return b.String()
}

func (m model) viewSim() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString("\n   " + red.Render("error: "+m.err.Error()) + "\n")
		b.WriteString(dim.Render("   r restart   q menu") + "\n")
		return b.String()
	}

	cw := m.width - 6
	ch := m.height - 18
	if cw < 40 {
		cw = 40
	}
	if ch < 10 {
		ch = 10
	}
	c := newCanvas(cw, ch)
	drawScene(c, m.last, m.trail)

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.selected), statusText, dim.Render(fmt.Sprintf("x%.0f", m.speed))))

	duration := m.sess.Config().Duration
	progress := math.Min(1, m.sess.Time()/duration)
	barWidth := 36
	filled := int(progress * float64(barWidth))
	timeStr := fmt.Sprintf("%.1fs/%.0fs", m.sess.Time(), duration)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(timeStr), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	for _, row := range strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n") {
		b.WriteString("   " + row + "\n")
	}

	s := m.last
	pose := s.Vehicle.Pose
	w := s.Output.Wrench
	est := s.Output.Estimates
	b.WriteString(fmt.Sprintf("\n   %s %s  %s %s  %s %s\n",
		dim.Render("pos"), white.Render(fmt.Sprintf("%7.2f %7.2f", pose.Position.X, pose.Position.Y)),
		dim.Render("hdg"), white.Render(fmt.Sprintf("%6.1f°", degrees(pose.Heading()))),
		dim.Render("goal"), magenta.Render(fmt.Sprintf("%6.2fm", s.GoalDistance()))))
	b.WriteString(fmt.Sprintf("   %s %s  %s %s\n",
		dim.Render("wrench"), white.Render(fmt.Sprintf("%7.1f %7.1f %7.1f", w.Force.X, w.Force.Y, w.Torque)),
		dim.Render("dist"), white.Render(fmt.Sprintf("%6.2f %6.2f %6.2f", est.Disturbance[0], est.Disturbance[1], est.Disturbance[2]))))

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(cw-10),
			asciigraph.Caption("goal distance [m], 1 pt/s"))
		b.WriteString("\n" + indent(graph, "   ") + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  +/- speed  h hold here  r restart  q menu") + "\n")
	return b.String()
}

// drawScene renders the trail, goal, reference and vessel of a sample.
func drawScene(c *canvas, s sim.Sample, trail []r2.Point) {
	c.clear()
	pts := []r2.Point{s.Vehicle.Pose.Position}
	if s.HasWaypoint {
		pts = append(pts, s.Waypoint.Position)
	}
	if len(trail) > 0 {
		pts = append(pts, trail[0])
	}
	c.fit(pts...)

	for _, p := range trail {
		c.plot(p, '·')
	}
	if s.HasWaypoint {
		c.pose(s.Waypoint.Pose(), '+', '-')
	}
	if s.Output.Active {
		c.plot(s.Output.Reference.Position, 'o')
	}
	c.pose(s.Vehicle.Pose, 'X', '=')
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func RunInteractive(logger *zap.SugaredLogger) error {
	p := tea.NewProgram(NewInteractiveApp(logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
