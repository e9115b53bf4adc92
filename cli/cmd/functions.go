package cmd

import (
	"context"
	"io"
	"os"

	"github.com/subframe7536/yaak/template"
)

// Functions lists the available template functions.
type Functions struct {
	Name   string `arg:"" help:"Show only functions whose name fuzzily matches" name:"name" optional:""`
	Output string `default:"yaml" enum:"yaml,json" help:"Output format (${enum})" short:"o"`

	out io.Writer
}

// Run executes the functions command.
func (f *Functions) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	descs := s.registry.Functions()

	if f.Name != "" {
		descs = descs[:0:0]

		for _, name := range s.registry.Suggest(f.Name) {
			fn, ok := s.registry.Lookup(name)
			if !ok {
				continue
			}

			descs = appendUnique(descs, fn.Descriptor())
		}
	}

	w := f.out
	if w == nil {
		w = os.Stdout
	}

	return encode(w, f.Output, descs)
}

// appendUnique appends d unless a descriptor of the same name is present.
// Aliases resolve to their function, so one function may match twice.
func appendUnique(descs []template.FunctionDescriptor, d template.FunctionDescriptor) []template.FunctionDescriptor {
	for _, have := range descs {
		if have.Name == d.Name {
			return descs
		}
	}

	return append(descs, d)
}
