package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/subframe7536/yaak/log"
)

// DefaultMaxDepth bounds how deeply variable values may reference other
// variables. Users may modify this before rendering.
var DefaultMaxDepth = 50

// ErrInvalidVariable reports a variable whose value is not a valid template.
var ErrInvalidVariable = NewError("invalid variable value")

// Render evaluates tokens against vars, calling cb for function tags.
//
// Tokens are evaluated strictly left to right; each tag is fully resolved
// before the next one starts. A variable whose value itself contains tags is
// rendered recursively with the same table and callback.
//
// Under [Throw] the first missing variable or failed function aborts the
// render. Under [Silent] those conditions render as the empty string and are
// logged at warn level. Parse errors and reference cycles are always
// returned.
func Render(
	ctx context.Context,
	tokens Tokens,
	vars Vars,
	cb Callback,
	opts RenderOptions,
) (string, error) {
	r := &renderer{vars: vars, cb: cb, opts: opts}

	return r.render(ctx, tokens)
}

// ParseAndRender parses source and renders the result.
func ParseAndRender(
	ctx context.Context,
	source string,
	vars Vars,
	cb Callback,
	opts RenderOptions,
) (string, error) {
	tokens, err := Parse(source)
	if err != nil {
		return "", err
	}

	return Render(ctx, tokens, vars, cb, opts)
}

// RenderValue renders every string found in value, including object keys.
//
// Objects (map[string]any, map[string]string) and arrays ([]any, []string)
// are copied recursively. Numbers, booleans and nil are returned unchanged.
// Any other type fails with [ErrUnsupportedValue]. Object entries are
// visited in key order.
func RenderValue(
	ctx context.Context,
	value any,
	vars Vars,
	cb Callback,
	opts RenderOptions,
) (any, error) {
	r := &renderer{vars: vars, cb: cb, opts: opts}

	return r.value(ctx, value)
}

// renderer holds the state of one render pass.
type renderer struct {
	vars  Vars
	cb    Callback
	opts  RenderOptions
	chain []string // variables currently being expanded
}

func (r *renderer) render(ctx context.Context, tokens Tokens) (string, error) {
	var buf strings.Builder

	for _, t := range tokens {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		switch t.Kind {
		case KindRaw:
			buf.WriteString(t.Text)

		case KindTag:
			s, err := r.tag(ctx, t.Value)
			if err != nil {
				return "", err
			}

			buf.WriteString(s)
		}
	}

	return buf.String(), nil
}

func (r *renderer) text(ctx context.Context, s string) (string, error) {
	tokens, err := Parse(s)
	if err != nil {
		return "", err
	}

	return r.render(ctx, tokens)
}

func (r *renderer) tag(ctx context.Context, v Value) (string, error) {
	switch v.Kind {
	case ValueStr:
		return v.Text, nil

	case ValueVar:
		return r.variable(ctx, v.Name)

	case ValueFn:
		return r.call(ctx, v)

	default:
		return "", ErrUnsupportedValue.With(slog.String("kind", v.Kind.String()))
	}
}

func (r *renderer) variable(ctx context.Context, name string) (string, error) {
	value, ok := r.vars[name]
	if !ok {
		return r.recover(ctx, ErrVariableNotFound.With(slog.String("name", name)))
	}

	if !strings.Contains(value, Open) {
		return value, nil
	}

	if slices.Contains(r.chain, name) {
		return "", ErrVariableCycle.With(
			slog.String("chain", strings.Join(append(r.chain, name), " → ")),
		)
	}

	if len(r.chain) >= DefaultMaxDepth {
		return "", ErrMaxDepthExceeded.With(
			slog.Int("max_depth", DefaultMaxDepth),
			slog.String("chain", strings.Join(append(r.chain, name), " → ")),
		)
	}

	tokens, err := Parse(value)
	if err != nil {
		return "", ErrInvalidVariable.Wrap(err).With(slog.String("name", name))
	}

	nested := *r
	nested.chain = append(slices.Clip(r.chain), name)

	return nested.render(ctx, tokens)
}

func (r *renderer) call(ctx context.Context, v Value) (string, error) {
	args := make(map[string]string, len(v.Args))

	for _, a := range v.Args {
		s, err := r.tag(ctx, a.Value)
		if err != nil {
			return "", err
		}

		args[a.Name] = s
	}

	if r.cb == nil {
		return r.recover(ctx, ErrFunctionNotFound.Wrap(ErrNoCallback).
			With(slog.String("function", v.Name)))
	}

	out, err := r.cb.Run(ctx, v.Name, args)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}

		return r.recover(ctx, classify(err).With(slog.String("function", v.Name)))
	}

	return out, nil
}

// recover applies the error behavior of the pass to a render error.
func (r *renderer) recover(ctx context.Context, err *Error) (string, error) {
	if r.opts.ErrorBehavior != Silent {
		return "", err
	}

	log.WarnContext(ctx, "render error suppressed", slog.Any("error", err))

	return "", nil
}

// classify keeps render errors raised by a callback and wraps anything else
// in [ErrFunctionFailed].
func classify(err error) *Error {
	for _, kind := range []*Error{
		ErrFunctionNotFound,
		ErrFunctionFailed,
		ErrMissingContext,
		ErrInvalidUTF8,
		ErrVariableNotFound,
	} {
		if errors.Is(err, kind) {
			var e *Error
			if errors.As(err, &e) {
				return e
			}

			return kind.Wrap(err)
		}
	}

	return ErrFunctionFailed.Wrap(err)
}

func (r *renderer) value(ctx context.Context, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil

	case string:
		return r.text(ctx, v)

	case bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil

	case map[string]any:
		out := make(map[string]any, len(v))

		for _, key := range slices.Sorted(maps.Keys(v)) {
			k, err := r.text(ctx, key)
			if err != nil {
				return nil, err
			}

			e, err := r.value(ctx, v[key])
			if err != nil {
				return nil, err
			}

			out[k] = e
		}

		return out, nil

	case map[string]string:
		out := make(map[string]string, len(v))

		for _, key := range slices.Sorted(maps.Keys(v)) {
			k, err := r.text(ctx, key)
			if err != nil {
				return nil, err
			}

			e, err := r.text(ctx, v[key])
			if err != nil {
				return nil, err
			}

			out[k] = e
		}

		return out, nil

	case []any:
		out := make([]any, len(v))

		for i, e := range v {
			rendered, err := r.value(ctx, e)
			if err != nil {
				return nil, err
			}

			out[i] = rendered
		}

		return out, nil

	case []string:
		out := make([]string, len(v))

		for i, e := range v {
			rendered, err := r.text(ctx, e)
			if err != nil {
				return nil, err
			}

			out[i] = rendered
		}

		return out, nil

	default:
		return nil, ErrUnsupportedValue.With(
			slog.String("type", fmt.Sprintf("%T", value)),
		)
	}
}

// TransformArgs passes every literal argument of every function tag through
// cb's argument transform and returns the rewritten tokens. Tags with a
// rewritten argument lose their source span and serialize canonically;
// every other token is returned unchanged. tokens is not modified.
func TransformArgs(ctx context.Context, tokens Tokens, cb Callback) (Tokens, error) {
	out := make(Tokens, len(tokens))

	for i, t := range tokens {
		out[i] = t

		if t.Kind != KindTag || t.Value.Kind != ValueFn {
			continue
		}

		args := slices.Clone(t.Value.Args)
		changed := false

		for j, a := range args {
			if a.Value.Kind != ValueStr {
				continue
			}

			s, err := cb.TransformArg(ctx, t.Value.Name, a.Name, a.Value.Text)
			if err != nil {
				return nil, ErrFunctionFailed.Wrap(err).With(
					slog.String("function", t.Value.Name),
					slog.String("arg", a.Name),
				)
			}

			if s != a.Value.Text {
				args[j].Value = Str(s)
				changed = true
			}
		}

		if changed {
			out[i] = Tag(Fn(t.Value.Name, args...))
		}
	}

	return out, nil
}

// Transform parses source, applies [TransformArgs] and serializes the
// result.
func Transform(ctx context.Context, source string, cb Callback) (string, error) {
	tokens, err := Parse(source)
	if err != nil {
		return "", err
	}

	tokens, err = TransformArgs(ctx, tokens, cb)
	if err != nil {
		return "", err
	}

	return tokens.String(), nil
}
