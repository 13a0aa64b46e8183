package interpreter

import (
	"fmt"
	"strings"
)

// Environment holds script variables. Names are case-insensitive like the rest of the language.

type Environment struct {
	vars map[string]int
}

func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]int)}
}

func (e *Environment) Get(name string) (int, bool) {
	v, ok := e.vars[strings.ToLower(name)]
	return v, ok
}

func (e *Environment) Set(name string, val int) {
	e.vars[strings.ToLower(name)] = val
}

func (e *Environment) String() string {
	return fmt.Sprint(e.vars)
}
