package cmd

import (
	"context"
	"io"
	"os"

	"github.com/subframe7536/yaak/pkg"
	"github.com/subframe7536/yaak/template"
)

// Escape escapes every template opening so that text renders literally.
type Escape struct {
	Text string `arg:"" help:"Text or '-' for stdin (default: source files)" name:"text" optional:""`

	out io.Writer
}

// Run executes the escape command.
func (e *Escape) Run(ctx context.Context) (err error) {
	return transformText(ctx, e.Text, e.out, template.Escape)
}

// Unescape removes one level of escaping from template openings.
type Unescape struct {
	Text string `arg:"" help:"Text or '-' for stdin (default: source files)" name:"text" optional:""`

	out io.Writer
}

// Run executes the unescape command.
func (u *Unescape) Run(ctx context.Context) (err error) {
	return transformText(ctx, u.Text, u.out, template.Unescape)
}

// transformText writes fn applied to the command input. The output is
// written as is, with no newline added, so that files survive a round trip.
func transformText(ctx context.Context, text string, w io.Writer, fn func(string) string) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := input(ctx, text)
	if err != nil {
		return err
	}

	if w == nil {
		w = os.Stdout
	}

	if _, err := io.WriteString(w, fn(src)); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}
