package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/pkg"
	"github.com/subframe7536/yaak/xmlfmt"
)

// Fmt re-indents an XML body without touching its template tags.
type Fmt struct {
	Indent   int  `default:"2" help:"Indent width for formatted output" short:"i"`
	Tabs     bool `help:"Indent with tabs instead of spaces" short:"t"`
	Check    bool `help:"Exit with an error if the input is not formatted"`
	Validate bool `help:"Check that the input is well-formed XML before formatting"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`

	out io.Writer
}

func (f *Fmt) indent() string {
	if f.Tabs {
		return "\t"
	}

	if f.Indent < 0 {
		return xmlfmt.DefaultIndent
	}

	return strings.Repeat(" ", f.Indent)
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var src string

	if f.Source == stdinSource {
		src, err = input(ctx, stdinSource)
	} else {
		var data []byte

		data, err = os.ReadFile(f.Source)
		if err != nil {
			err = pkg.ErrReadInput.Wrap(err)
		}

		src = string(data)
	}

	if err != nil {
		return err
	}

	if f.Validate {
		if err := xmlfmt.Validate(src); err != nil {
			return pkg.ErrInvalidFormat.Wrapf("%s", f.Source).Wrap(err)
		}
	}

	out := xmlfmt.Format(src, f.indent())

	if f.Check {
		if strings.TrimSuffix(src, "\n") != out {
			return pkg.ErrNotFormatted.Wrapf("%s", f.Source)
		}

		log.DebugContext(ctx, "input is formatted", slog.String("source", f.Source))

		return nil
	}

	w := f.out
	if w == nil {
		w = os.Stdout
	}

	_, err = fmt.Fprintln(w, out)

	return err
}
