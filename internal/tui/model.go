// Package tui is the terminal front-end for an engine pool.
package tui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-lanes/dsp/core"
	"github.com/cwbudde/algo-lanes/dsp/effectchain"
	"github.com/cwbudde/algo-lanes/engine"
)

const refreshInterval = 50 * time.Millisecond

// Pool is the part of engine.Pool the front-end uses.
type Pool interface {
	Dispatch(cmd engine.Command) (float64, error)
	Snapshot() engine.Snapshot
	Status() []engine.LaneStatus
	Roles(i int) ([]effectchain.Role, error)
	Parameters(i int, role effectchain.Role) (map[effectchain.ParamKey]float64, error)
	Spectrum(i int) ([]float64, error)
}

// SnapshotMsg carries a pool snapshot into the update loop.
type SnapshotMsg engine.Snapshot

type tickMsg time.Time

// Model is the bubbletea model.
type Model struct {
	pool    Pool
	titles  map[string]string
	updates <-chan engine.Snapshot

	snapshot engine.Snapshot
	status   []engine.LaneStatus
	spectrum []float64
	params   []effectchain.ParamSpec
	values   map[effectchain.ParamKey]float64

	lane     int
	param    int
	message  string
	quitting bool
}

// NewModel returns a model for pool. titles maps asset ids to display
// names; updates may be nil.
func NewModel(pool Pool, titles map[string]string, updates <-chan engine.Snapshot) Model {
	m := Model{pool: pool, titles: titles, updates: updates}
	m.refresh()

	return m
}

// ListenForSnapshots waits for the next pool snapshot.
func ListenForSnapshots(updates <-chan engine.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}

	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}

		return SnapshotMsg(s)
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(ListenForSnapshots(m.updates), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		m.snapshot = engine.Snapshot(msg)
		m.refresh()
		return m, ListenForSnapshots(m.updates)

	case tickMsg:
		m.refresh()
		return m, tick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		m.quitting = true
		m.run(engine.Command{Op: engine.OpStopAll})
		return m, tea.Quit

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.selectLane(int(key[0] - '1'))
		m.toggle()

	case " ", "enter":
		m.toggle()

	case "up", "k":
		m.selectLane(m.lane - 1)

	case "down", "j":
		m.selectLane(m.lane + 1)

	case "left", "h":
		if len(m.params) > 0 {
			m.param = (m.param + len(m.params) - 1) % len(m.params)
		}

	case "right", "l":
		if len(m.params) > 0 {
			m.param = (m.param + 1) % len(m.params)
		}

	case "+", "=":
		m.nudge(1)

	case "-", "_":
		m.nudge(-1)

	case "a":
		m.run(engine.Command{Op: engine.OpPlayAll})

	case "x":
		m.run(engine.Command{Op: engine.OpStopAll, Reset: true})

	case "r":
		m.run(engine.Command{Op: engine.OpStop, Lane: m.lane, Reset: true})

	case "s":
		m.run(engine.Command{Op: engine.OpSetOutputRoute, UseSpeaker: !m.snapshot.UseSpeaker})
	}

	m.refresh()

	return m, nil
}

func (m *Model) selectLane(i int) {
	if n := len(m.status); n > 0 {
		m.lane = max(0, min(i, n-1))
	}
}

func (m *Model) toggle() {
	if m.lane >= len(m.snapshot.Playing) {
		return
	}

	if m.snapshot.Playing[m.lane] {
		m.run(engine.Command{Op: engine.OpStop, Lane: m.lane})
		return
	}

	m.run(engine.Command{Op: engine.OpPlay, Lane: m.lane})
}

// nudge moves the selected parameter one step. Frequencies move a sixth of
// an octave, everything else 2% of its range.
func (m *Model) nudge(dir float64) {
	if m.param >= len(m.params) {
		return
	}

	spec := m.params[m.param]
	v := m.values[spec.Key]

	if spec.Unit == "Hz" {
		v *= math.Pow(2, dir/6)
	} else {
		v += dir * (spec.Max - spec.Min) / 50
	}

	m.run(engine.Command{
		Op:    engine.OpSetParameter,
		Lane:  m.lane,
		Role:  spec.Role,
		Key:   spec.Key,
		Value: core.Clamp(v, spec.Min, spec.Max),
	})
}

// Message returns the last command error, or "".
func (m Model) Message() string { return m.message }

func (m *Model) run(cmd engine.Command) {
	if _, err := m.pool.Dispatch(cmd); err != nil {
		m.message = fmt.Sprintf("%v: %v", cmd, err)
	}
}

// refresh pulls live lane state and the selected lane's parameters.
func (m *Model) refresh() {
	m.snapshot = m.pool.Snapshot()
	m.status = m.pool.Status()
	m.selectLane(m.lane)

	m.params = nil
	m.values = make(map[effectchain.ParamKey]float64)
	m.spectrum = nil

	if m.lane >= len(m.status) {
		return
	}

	roles, err := m.pool.Roles(m.lane)
	if err != nil {
		return
	}

	for _, role := range roles {
		values, err := m.pool.Parameters(m.lane, role)
		if err != nil {
			continue
		}

		for _, spec := range effectchain.Specs(role) {
			m.params = append(m.params, spec)
			m.values[spec.Key] = values[spec.Key]
		}
	}

	if m.param >= len(m.params) {
		m.param = 0
	}

	m.spectrum, _ = m.pool.Spectrum(m.lane)
}
