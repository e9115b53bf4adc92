package function

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/template"
)

var (
	ErrDuplicateFunction = template.NewError("duplicate function name")
	ErrInvalidArgument   = template.NewError("invalid argument")
)

// maxSuggestions bounds the "did you mean" list of an unknown function.
const maxSuggestions = 3

// Registry is an immutable set of functions. It is safe for concurrent use.
type Registry struct {
	fns    []Function
	byName map[string]Function
	names  []string // canonical names and aliases, in registration order
	log    log.Logger
}

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger sets the logger used by the registry and its bindings.
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) { r.log = logger }
}

// NewRegistry registers fns by name and alias. Registering a name or alias
// twice fails with [ErrDuplicateFunction].
func NewRegistry(fns []Function, opts ...Option) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Function, len(fns)),
		log:    log.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	for _, fn := range fns {
		d := fn.Descriptor()

		for _, name := range append([]string{d.Name}, d.Aliases...) {
			if _, ok := r.byName[name]; ok {
				return nil, ErrDuplicateFunction.With(slog.String("name", name))
			}

			r.byName[name] = fn
			r.names = append(r.names, name)
		}

		r.fns = append(r.fns, fn)
	}

	return r, nil
}

// Lookup returns the function registered under name or one of its aliases.
func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.byName[name]

	return fn, ok
}

// Functions describes every registered function in registration order.
func (r *Registry) Functions() []template.FunctionDescriptor {
	out := make([]template.FunctionDescriptor, len(r.fns))
	for i, fn := range r.fns {
		out[i] = fn.Descriptor()
	}

	return out
}

// Suggest returns up to three registered names that fuzzily match name,
// best match first.
func (r *Registry) Suggest(name string) []string {
	matches := fuzzy.Find(name, r.names)

	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches[:min(len(matches), maxSuggestions)] {
		out = append(out, m.Str)
	}

	return out
}

// Bind returns a [template.Callback] that runs functions in w.
func (r *Registry) Bind(w Window) template.Callback {
	return binding{reg: r, win: w}
}

// Run looks up and runs the named function in w. Arguments omitted by the
// caller take the default value from the function's descriptor.
func (r *Registry) Run(
	ctx context.Context,
	w Window,
	name string,
	args map[string]string,
) (string, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return "", r.notFound(name)
	}

	call := Call{Window: w, Args: withDefaults(fn.Descriptor(), args)}

	r.log.TraceContext(ctx, "run function",
		slog.String("function", name),
		slog.String("purpose", w.Purpose.String()))

	return fn.Run(ctx, call)
}

// TransformArg rewrites one literal argument of the named function. Unknown
// functions and functions without a transform return value unchanged.
func (r *Registry) TransformArg(
	ctx context.Context,
	w Window,
	name, arg, value string,
) (string, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return value, nil
	}

	t, ok := fn.(ArgTransformer)
	if !ok {
		return value, nil
	}

	return t.TransformArg(ctx, w, arg, value)
}

func (r *Registry) notFound(name string) error {
	err := template.ErrFunctionNotFound.With(slog.String("function", name))

	if s := r.Suggest(name); len(s) > 0 {
		return err.Wrap(fmt.Errorf("%q (did you mean %s?)", name, strings.Join(s, ", ")))
	}

	return err.Wrap(fmt.Errorf("%q", name))
}

func withDefaults(d template.FunctionDescriptor, args map[string]string) map[string]string {
	out := make(map[string]string, len(args)+len(d.Args))

	for _, a := range d.Args {
		if a.DefaultValue != "" {
			out[a.Name] = a.DefaultValue
		}
	}

	for k, v := range args {
		out[k] = v
	}

	return out
}

// binding adapts a Registry and a Window to template.Callback.
type binding struct {
	reg *Registry
	win Window
}

func (b binding) Functions() []template.FunctionDescriptor { return b.reg.Functions() }

func (b binding) Run(ctx context.Context, name string, args map[string]string) (string, error) {
	return b.reg.Run(ctx, b.win, name, args)
}

func (b binding) TransformArg(ctx context.Context, fn, arg, value string) (string, error) {
	return b.reg.TransformArg(ctx, b.win, fn, arg, value)
}
