package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/flocksim/internal/flock"
	"github.com/san-kum/flocksim/internal/metrics"
)

const (
	width           = 80
	height          = 24
	fps             = 30
	historyCapacity = 300
	orbitStep       = 0.15
	zoomStep        = 1.2
)

type TickMsg time.Time

// Model drives one flock simulation and draws it every tick.
type Model struct {
	cfg     flock.Config
	sources []flock.FieldSource
	opts    []flock.Option
	dt      float32
	title   string

	sim    *flock.Simulation
	canvas *Canvas
	rig    *CameraRig

	running  bool
	showHelp bool
	visible  int
	err      error

	polarization []float64
	speed        []float64
	extent       float64
}

// NewModel builds and starts a simulation for the live view.
func NewModel(title string, cfg flock.Config, sources []flock.FieldSource, dt float32, opts ...flock.Option) (Model, error) {
	cam := NewCamera()
	cam.Fit(cfg.Bounds)

	m := Model{
		cfg:     cfg,
		sources: sources,
		opts:    opts,
		dt:      dt,
		title:   title,
		canvas:  NewCanvas(width, height),
		rig:     NewCameraRig(cam, fps),
		running: true,
	}
	if err := m.restart(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) restart() error {
	if m.sim != nil {
		m.sim.Destroy()
	}
	sim, err := flock.New(m.cfg, m.opts...)
	if err != nil {
		return err
	}
	if err := sim.Start(m.sources...); err != nil {
		return err
	}
	m.sim = sim
	m.polarization = m.polarization[:0]
	m.speed = m.speed[:0]
	m.extent = 0
	m.err = nil
	m.draw()
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.sim.Destroy()
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "n", ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.err = m.restart()
		case "left", "h":
			m.rig.Rotate(-orbitStep, 0)
		case "right", "l":
			m.rig.Rotate(orbitStep, 0)
		case "up", "k":
			m.rig.Rotate(0, orbitStep)
		case "down", "j":
			m.rig.Rotate(0, -orbitStep)
		case "+", "=":
			m.rig.Zoom(zoomStep)
		case "-", "_":
			m.rig.Zoom(1 / zoomStep)
		case "0":
			m.rig.Reset()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.rig.Update()
		m.draw()
		return m, tick()
	}
	return m, nil
}

// step advances the simulation once and records the live observables.
func (m *Model) step() {
	if err := m.sim.Tick(m.dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	_ = m.sim.View(func(f flock.Frame) {
		m.polarization = appendCapped(m.polarization, metrics.PolarizationOf(f.Boids))
		m.speed = appendCapped(m.speed, metrics.MeanSpeedOf(f.Boids))
		m.extent = metrics.ExtentOf(f.Boids, m.cfg.Bounds)
	})
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) draw() {
	fields := m.sim.Fields()
	_ = m.sim.View(func(f flock.Frame) {
		m.visible = RenderFrame(m.canvas, m.rig.Camera, f, m.cfg.Bounds, fields)
	})
}

func (m Model) View() string {
	var frame int
	var tm float64
	_ = m.sim.View(func(f flock.Frame) { frame, tm = f.Index, f.Time })

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(statusStyle(m.running).Render(status) + "\n\n")

	if len(m.polarization) > 1 {
		chart := asciigraph.Plot(m.polarization,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Caption("Polarization"))
		s.WriteString(chart + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle().Render(label) + valueStyle().Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", frame))
	row("Time", fmt.Sprintf("%.2fs", tm))
	row("Boids", fmt.Sprintf("%d (%d visible)", m.cfg.Count, m.visible))
	row("Backend", m.sim.Backend().Name())
	if n := len(m.speed); n > 0 {
		row("Mean speed", fmt.Sprintf("%.2f", m.speed[n-1]))
		row("Polarization", fmt.Sprintf("%.3f", m.polarization[n-1]))
	}
	row("Extent", Bar(m.extent, 12)+fmt.Sprintf(" %.2f", m.extent))
	row("Speed", Sparkline(m.speed, 20))
	row("Theme", CurrentTheme.Name)

	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle().Render("SP:Pause N:Step R:Restart Q:Quit\n←→↑↓:Orbit +/-:Zoom T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle().Render(m.canvas.String()),
		statsStyle().Render(s.String()))

	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N / .    - Step once while paused   ║
║  R        - Restart from the seed    ║
║  ←/→ h/l  - Orbit around the flock   ║
║  ↑/↓ k/j  - Tilt the camera          ║
║  + / -    - Zoom in / out            ║
║  0        - Reset the camera         ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the live view and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
