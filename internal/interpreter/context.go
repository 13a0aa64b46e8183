package interpreter

import (
	"errors"
	"fmt"

	"robosim/internal/sim"
)

const (
	// DefaultMaxCommands bounds how many commands one script may expand to.
	DefaultMaxCommands = 10000
	// DefaultMaxSteps bounds how many statements one script may execute,
	// emitting or not.
	DefaultMaxSteps = 1000000
)

var (
	ErrTooManyCommands = errors.New("script emits too many commands")
	ErrTooManySteps    = errors.New("script executes too many statements")
)

// Context stores variables and the commands emitted so far

type Context struct {
	Env         *Environment
	Commands    []sim.Command
	MaxCommands int
	MaxSteps    int

	steps int
}

func NewContext() *Context {
	return &Context{Env: NewEnvironment(), MaxCommands: DefaultMaxCommands, MaxSteps: DefaultMaxSteps}
}

// Step charges one executed statement against MaxSteps.
func (c *Context) Step() error {
	c.steps++
	if c.MaxSteps > 0 && c.steps > c.MaxSteps {
		return fmt.Errorf("%w (limit %d)", ErrTooManySteps, c.MaxSteps)
	}
	return nil
}

func (c *Context) Emit(cmd sim.Command) error {
	if c.MaxCommands > 0 && len(c.Commands) >= c.MaxCommands {
		return fmt.Errorf("%w (limit %d)", ErrTooManyCommands, c.MaxCommands)
	}
	c.Commands = append(c.Commands, cmd)
	return nil
}
