package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/subframe7536/yaak/render"
)

// Eval renders a single template against the environment chain.
type Eval struct {
	Template  string `arg:"" help:"Template text or '-' for stdin (default: source files)" name:"template" optional:""`
	Silent    bool   `help:"Render missing variables and failed functions as empty text"`
	NoNewline bool   `help:"Do not print a trailing newline" short:"n"`

	out io.Writer
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := input(ctx, e.Template)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	out, err := render.Template(ctx, src, s.chain, s.callback(), renderOptions(e.Silent))
	if err != nil {
		return err
	}

	w := e.out
	if w == nil {
		w = os.Stdout
	}

	if e.NoNewline {
		_, err = fmt.Fprint(w, out)
	} else {
		_, err = fmt.Fprintln(w, out)
	}

	return err
}
