package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/barstats/barstats/internal/model"
	"github.com/barstats/barstats/internal/scheduler"
)

// Model renders live snapshots from the scheduler and feeds interface
// selection events back to it.
type Model struct {
	sched     *scheduler.Scheduler
	stream    <-chan model.StatsSnapshot
	ctxCancel context.CancelFunc
	latest    model.StatsSnapshot
	width     int
	height    int
}

func New(ctx context.Context, sched *scheduler.Scheduler) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		sched:     sched,
		stream:    sched.Stream(ctx),
		ctxCancel: cancel,
		width:     100,
		height:    30,
	}
}

type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctxCancel()
			return m, tea.Quit
		case "a":
			m.sched.Select(model.Auto())
		case "tab", "right":
			m.cycle(1)
		case "shift+tab", "left":
			m.cycle(-1)
		}
	case tickMsg:
		select {
		case snap, ok := <-m.stream:
			if ok {
				m.latest = snap
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

// cycle moves the manual selection through the current interface listing.
// From auto mode it starts at the first entry.
func (m *Model) cycle(step int) {
	ifaces := m.latest.Interfaces
	if len(ifaces) == 0 {
		return
	}
	idx := 0
	if m.latest.Selection.Manual {
		for i, d := range ifaces {
			if d.Name == m.latest.Selection.Name {
				idx = (i + step + len(ifaces)) % len(ifaces)
				break
			}
		}
	}
	m.sched.Select(model.Manual(ifaces[idx].Name))
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("48")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	s := m.latest
	header := titleStyle.Render("barstats") + "  " +
		subtleStyle.Render(s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006")) + "  " +
		subtleStyle.Render("up "+s.UptimeText)

	cpuCard := card("CPU", gaugeBar(s.CPUPercent, 24))
	ramCard := card("RAM", gaugeBar(s.RAMPercent, 24))
	gpuCard := card("GPU", gaugeBar(s.GPUPercent, 24))

	netCard := card("NET",
		fmt.Sprintf("%s\n↓ %7.2f Mb/s   ↑ %7.2f Mb/s",
			ifaceLine(s), s.Rates.DownMbps, s.Rates.UpMbps))

	infoCard := card("Public IP", s.PublicAddress)

	menu := card("Interfaces  (tab: next, a: auto, q: quit)", renderMenu(s))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, ramCard, gpuCard)
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, netCard, infoCard)

	return lipgloss.JoinVertical(lipgloss.Left, header, line1, line2, menu)
}

func ifaceLine(s model.StatsSnapshot) string {
	name := s.Interface
	if name == "" {
		name = "-"
	}
	if s.Selection.Manual {
		return name + " (manual)"
	}
	return name + " (auto)"
}

func renderMenu(s model.StatsSnapshot) string {
	if len(s.Interfaces) == 0 {
		return subtleStyle.Render("no active interfaces")
	}
	rows := make([]string, 0, len(s.Interfaces)+1)
	autoMark := " "
	if !s.Selection.Manual {
		autoMark = "►"
	}
	rows = append(rows, autoMark+" Automatic")
	for _, d := range s.Interfaces {
		mark := " "
		line := d.Label
		if s.Selection.Manual && s.Selection.Name == d.Name {
			mark = "►"
			line = activeStyle.Render(line)
		}
		rows = append(rows, mark+" "+line)
	}
	return strings.Join(rows, "\n")
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func card(title, body string) string {
	return cardStyle.Render(labelStyle.Render(title) + "\n" + body)
}

// Run starts the Bubble Tea program over the scheduler's stream.
func Run(ctx context.Context, sched *scheduler.Scheduler) error {
	prog := tea.NewProgram(New(ctx, sched), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
