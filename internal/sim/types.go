// Package sim is the discrete robot simulation engine: one command per tick on a
// static obstacle grid, with battery, heat and sensor bookkeeping.
package sim

import "fmt"

// Command is one discrete instruction for the robot.
type Command string

const (
	Forward   Command = "FORWARD"
	Backward  Command = "BACKWARD"
	TurnLeft  Command = "TURN_LEFT"
	TurnRight Command = "TURN_RIGHT"
	Wait      Command = "WAIT"
)

// Commands lists the recognised commands.
var Commands = []Command{Forward, Backward, TurnLeft, TurnRight, Wait}

// Known reports whether c is one of the five recognised commands.
func (c Command) Known() bool {
	switch c {
	case Forward, Backward, TurnLeft, TurnRight, Wait:
		return true
	}
	return false
}

// Direction is a cardinal heading in degrees, clockwise from up.
type Direction int

const (
	Up    Direction = 0   // -y
	Right Direction = 90  // +x
	Down  Direction = 180 // +y
	Left  Direction = 270 // -x
)

func (d Direction) Valid() bool {
	switch d {
	case Up, Right, Down, Left:
		return true
	}
	return false
}

func (d Direction) TurnRight() Direction {
	return (d + 90) % 360
}

func (d Direction) TurnLeft() Direction {
	return (d - 90 + 360) % 360
}

// Delta is the unit displacement for one step along d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// State is the mutable robot state owned by an Engine.
type State struct {
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Direction   Direction `json:"direction"`
	Battery     float64   `json:"battery"`
	Temperature float64   `json:"temperature"`
}

// SensorReading is sampled fresh on every step.
type SensorReading struct {
	Distance    float64 `json:"distance"`
	Temperature float64 `json:"temperature"`
	Light       float64 `json:"light"`
	Collision   bool    `json:"collision"`
}

// StepResult is the snapshot returned by Engine.Step.
type StepResult struct {
	Tick        uint64        `json:"tick"`
	Command     Command       `json:"command"`
	X           int           `json:"x"`
	Y           int           `json:"y"`
	Direction   Direction     `json:"direction"`
	Battery     float64       `json:"battery"`
	Temperature float64       `json:"temperature"`
	Sensors     SensorReading `json:"sensors"`
	Logs        []LogEntry    `json:"logs"`
	Moved       bool          `json:"moved"`
}

// Worst returns the highest severity logged in this step, or Info when nothing was logged.
func (r StepResult) Worst() Severity {
	worst := Info
	for _, l := range r.Logs {
		if l.Severity > worst {
			worst = l.Severity
		}
	}
	return worst
}

// HasSeverity reports whether any entry is at least s.
func (r StepResult) HasSeverity(s Severity) bool {
	for _, l := range r.Logs {
		if l.Severity >= s {
			return true
		}
	}
	return false
}
