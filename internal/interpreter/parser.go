package interpreter

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"robosim/internal/sim"
)

// Program is a robot control script, e.g.
//
//	n = 2
//	repeat n + 1 { forward; turn_right }
//	if n { wait }
type Program struct {
	Statements []*Statement `parser:"@@*"`
}

type Statement struct {
	Repeat  *Repeat  `parser:"  @@"`
	If      *If      `parser:"| @@"`
	Assign  *Assign  `parser:"| @@ ';'?"`
	Command *Command `parser:"| @@ ';'?"`
}

type Assign struct {
	Name string `parser:"@Ident"`
	Expr *Expr  `parser:"'=' @@"`
}

// Command is any bare word; it is upper-cased and handed to the engine as is.
type Command struct {
	Pos  lexer.Position
	Name string `parser:"@Ident"`
}

type Repeat struct {
	Pos   lexer.Position
	Count *Expr    `parser:"'repeat' @@"`
	Body  *Program `parser:"'{' @@ '}'"`
}

type If struct {
	Cond *Expr    `parser:"'if' @@"`
	Body *Program `parser:"'{' @@ '}'"`
}

type Expr struct {
	Left *Term     `parser:"@@"`
	Rest []*OpTerm `parser:"@@*"`
}

type OpTerm struct {
	Op    string `parser:"@('+'|'-')"`
	Right *Term  `parser:"@@"`
}

type Term struct {
	Pos    lexer.Position
	Number *int    `parser:"@Int"`
	Ident  *string `parser:"| @Ident"`
}

var parser = participle.MustBuild[Program](
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(2),
)

func Parse(data string) (*Program, error) {
	return parser.ParseString("script", data)
}

// Compile parses a script and expands it into the flat command sequence it emits.
func Compile(data string) ([]sim.Command, error) {
	prog, err := Parse(data)
	if err != nil {
		return nil, err
	}
	ctx := NewContext()
	if err := prog.Exec(ctx); err != nil {
		return nil, err
	}
	return ctx.Commands, nil
}

func (p *Program) Exec(ctx *Context) error {
	for _, stmt := range p.Statements {
		if err := stmt.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Statement) Exec(ctx *Context) error {
	if err := ctx.Step(); err != nil {
		return err
	}
	switch {
	case s.Assign != nil:
		val, err := s.Assign.Expr.Eval(ctx)
		if err != nil {
			return err
		}
		ctx.Env.Set(s.Assign.Name, val)
	case s.Command != nil:
		return ctx.Emit(sim.Command(strings.ToUpper(s.Command.Name)))
	case s.Repeat != nil:
		n, err := s.Repeat.Count.Eval(ctx)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%s: negative repeat count %d", s.Repeat.Pos, n)
		}
		for i := 0; i < n; i++ {
			if err := ctx.Step(); err != nil {
				return err
			}
			if err := s.Repeat.Body.Exec(ctx); err != nil {
				return err
			}
		}
	case s.If != nil:
		cond, err := s.If.Cond.Eval(ctx)
		if err != nil {
			return err
		}
		if cond != 0 {
			return s.If.Body.Exec(ctx)
		}
	}
	return nil
}

func (e *Expr) Eval(ctx *Context) (int, error) {
	val, err := e.Left.Eval(ctx)
	if err != nil {
		return 0, err
	}
	for _, rt := range e.Rest {
		v, err := rt.Right.Eval(ctx)
		if err != nil {
			return 0, err
		}
		switch rt.Op {
		case "+":
			val += v
		case "-":
			val -= v
		}
	}
	return val, nil
}

func (t *Term) Eval(ctx *Context) (int, error) {
	switch {
	case t.Number != nil:
		return *t.Number, nil
	case t.Ident != nil:
		v, ok := ctx.Env.Get(*t.Ident)
		if !ok {
			return 0, fmt.Errorf("%s: undefined variable %s", t.Pos, *t.Ident)
		}
		return v, nil
	}
	return 0, fmt.Errorf("invalid term")
}
