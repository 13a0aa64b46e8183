package sim

import (
	"errors"
	"fmt"

	"robosim/internal/world"
)

const (
	MaxBattery       = 100.0
	CollisionPenalty = 5.0

	// HotConsumption is the per-tick draw above which the core heats faster.
	HotConsumption = 5.0
	heatJitter     = 0.2
	heatHotExtra   = 0.5
)

var (
	ErrEmptyGrid        = errors.New("sim: grid must have at least one cell")
	ErrInvalidDirection = errors.New("sim: direction must be 0, 90, 180 or 270")
)

// Engine advances one robot over a static grid. It is not safe for concurrent use;
// a single caller owns it for the duration of a run.
type Engine struct {
	cfg   Configuration
	grid  *world.Grid
	state State
	rng   RandSource
	tick  uint64
}

// New builds an engine for one run. The initial state is not checked against the
// grid, so a robot may start inside an obstacle. A nil rng uses NewRand(1).
func New(cfg Configuration, grid *world.Grid, initial State, rng RandSource) (*Engine, error) {
	if grid.Empty() {
		return nil, ErrEmptyGrid
	}
	if !initial.Direction.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDirection, int(initial.Direction))
	}
	if rng == nil {
		rng = NewRand(1)
	}
	initial.Battery = clampBattery(initial.Battery)
	return &Engine{
		cfg:   cfg.clone(),
		grid:  grid,
		state: initial,
		rng:   rng,
	}, nil
}

// State returns a copy of the current robot state.
func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Configuration() Configuration {
	return e.cfg.clone()
}

// Tick is the number of steps processed so far.
func (e *Engine) Tick() uint64 {
	return e.tick
}

func (e *Engine) Depleted() bool {
	return e.state.Battery <= 0
}

// Step applies one command and returns the resulting snapshot. It never fails:
// problems are reported through the returned log entries.
func (e *Engine) Step(cmd Command) StepResult {
	e.tick++
	var logs []LogEntry

	e.state.Battery = clampBattery(e.state.Battery - e.cfg.Power.ConsumptionPerTick)

	heat := e.rng.Float64() * heatJitter
	if e.cfg.Power.ConsumptionPerTick > HotConsumption {
		heat += heatHotExtra
	}
	e.state.Temperature += heat

	if e.state.Battery <= 0 {
		logs = append(logs, LogEntry{Critical, "battery depleted, all actuation halted"})
		return e.result(cmd, logs, false, false)
	}

	moved, collision := false, false
	switch cmd {
	case Forward, Backward:
		moved, collision, logs = e.move(cmd, logs)
	case TurnRight:
		e.state.Direction = e.state.Direction.TurnRight()
	case TurnLeft:
		e.state.Direction = e.state.Direction.TurnLeft()
	case Wait:
		logs = append(logs, LogEntry{Info, "waiting"})
	}

	return e.result(cmd, logs, moved, collision)
}

func (e *Engine) move(cmd Command, logs []LogEntry) (moved, collision bool, _ []LogEntry) {
	if !e.cfg.CanMove() {
		return false, false, append(logs, LogEntry{Error, fmt.Sprintf("%s needs a motor in the left or right slot", cmd)})
	}

	dx, dy := e.state.Direction.Delta()
	if cmd == Backward {
		dx, dy = -dx, -dy
	}
	nx, ny := e.state.X+dx, e.state.Y+dy

	switch {
	case !e.grid.InBounds(nx, ny):
		return false, false, append(logs, LogEntry{Warning, fmt.Sprintf("boundary reached at (%d,%d)", e.state.X, e.state.Y)})
	case e.grid.IsObstacle(nx, ny):
		e.state.Battery = clampBattery(e.state.Battery - CollisionPenalty)
		return false, true, append(logs, LogEntry{Critical, fmt.Sprintf("collision with obstacle at (%d,%d)", nx, ny)})
	}

	e.state.X, e.state.Y = nx, ny
	return true, false, logs
}

func (e *Engine) result(cmd Command, logs []LogEntry, moved, collision bool) StepResult {
	return StepResult{
		Tick:        e.tick,
		Command:     cmd,
		X:           e.state.X,
		Y:           e.state.Y,
		Direction:   e.state.Direction,
		Battery:     e.state.Battery,
		Temperature: e.state.Temperature,
		Sensors:     e.readSensors(collision),
		Logs:        logs,
		Moved:       moved,
	}
}

func clampBattery(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > MaxBattery:
		return MaxBattery
	}
	return v
}
