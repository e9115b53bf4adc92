package template

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCallback runs a fixed set of functions and records every call.
type fakeCallback struct {
	calls []string
}

func (*fakeCallback) Functions() []FunctionDescriptor {
	return []FunctionDescriptor{
		{Name: "upper", Args: []ArgDescriptor{{Name: "s"}}},
		{Name: "join"},
		{Name: "fail"},
		{Name: "context"},
	}
}

func (f *fakeCallback) Run(
	_ context.Context,
	name string,
	args map[string]string,
) (string, error) {
	f.calls = append(f.calls, name)

	switch name {
	case "upper":
		return strings.ToUpper(args["s"]), nil

	case "join":
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + args[k]
		}

		return strings.Join(parts, ","), nil

	case "fail":
		return "", errors.New("boom")

	case "context":
		return "", ErrMissingContext.Wrap(errors.New("no workspace"))

	default:
		return "", ErrFunctionNotFound
	}
}

func (*fakeCallback) TransformArg(
	_ context.Context,
	fn, arg, value string,
) (string, error) {
	if fn == "upper" && arg == "s" && !strings.HasPrefix(value, "T:") {
		return "T:" + value, nil
	}

	if fn == "fail" {
		return "", errors.New("transform failed")
	}

	return value, nil
}

func TestResolve(t *testing.T) {
	t.Parallel()

	folder := Scope{Name: "folder", Variables: []Variable{
		{Name: "x", Value: "1", Enabled: true},
	}}
	base := Scope{Name: "base", Variables: []Variable{
		{Name: "x", Value: "2", Enabled: true},
		{Name: "y", Value: "3", Enabled: true},
	}}

	assert.Equal(t, Vars{"x": "1", "y": "3"}, Resolve(folder, base))
	assert.Equal(t, Vars{"x": "2", "y": "3"}, Resolve(base))
	assert.Equal(t, Vars{}, Resolve())
}

func TestResolveSkipsDisabledAndEmpty(t *testing.T) {
	t.Parallel()

	specific := Scope{Variables: []Variable{
		{Name: "a", Value: "override", Enabled: false},
		{Name: "b", Value: "", Enabled: true},
		{Name: "only", Value: "x", Enabled: false},
		{Name: "blank", Value: "", Enabled: true},
	}}
	general := Scope{Variables: []Variable{
		{Name: "a", Value: "base", Enabled: true},
		{Name: "b", Value: "base", Enabled: true},
	}}

	vars := Resolve(specific, general)

	assert.Equal(t, Vars{"a": "base", "b": "base"}, vars)

	_, ok := vars.Lookup("only")
	assert.False(t, ok)

	_, ok = vars.Lookup("blank")
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	t.Parallel()

	vars := Vars{
		"host":  "example.com",
		"name":  "world",
		"url":   "https://${[ host ]}/api",
		"upper": "${[ upper(s: name) ]}",
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "raw", input: "plain text", want: "plain text"},
		{name: "variable", input: "hello ${[ name ]}", want: "hello world"},
		{name: "function_literal", input: `${[ upper(s: "abc") ]}`, want: "ABC"},
		{name: "function_variable_arg", input: "${[ upper(s: name) ]}", want: "WORLD"},
		{name: "function_many_args", input: `${[ join(b: "2", a: host) ]}`, want: "a=example.com,b=2"},
		{name: "recursive_variable", input: "${[ url ]}/users", want: "https://example.com/api/users"},
		{name: "recursive_function", input: "${[ upper ]}!", want: "WORLD!"},
		{name: "escaped_tag", input: `\${[ name ]} is ${[ name ]}`, want: "${[ name ]} is world"},
		{name: "escaped_backslash", input: `\\${[ name ]}`, want: `\\world`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAndRender(
				context.Background(), tt.input, vars, &fakeCallback{}, RenderOptions{},
			)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderMissingVariable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokens := MustParse("a${[ missing ]}b")

	_, err := Render(ctx, tokens, Vars{}, nil, RenderOptions{ErrorBehavior: Throw})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVariableNotFound)
	assert.Contains(t, fmt.Sprint(err), "variable not found")

	got, err := Render(ctx, tokens, Vars{}, nil, RenderOptions{ErrorBehavior: Silent})
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
}

func TestRenderDisabledVariableIsMissing(t *testing.T) {
	t.Parallel()

	vars := Resolve(Scope{Variables: []Variable{{Name: "token", Value: "secret"}}})

	_, err := ParseAndRender(context.Background(), "${[ token ]}", vars, nil, RenderOptions{})
	assert.ErrorIs(t, err, ErrVariableNotFound)
}

func TestRenderMissingVariableInArgument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cb := &fakeCallback{}

	_, err := ParseAndRender(ctx, "${[ upper(s: nope) ]}", Vars{}, cb, RenderOptions{})
	assert.ErrorIs(t, err, ErrVariableNotFound)
	assert.Empty(t, cb.calls, "function must not run when an argument fails")

	got, err := ParseAndRender(ctx, "[${[ upper(s: nope) ]}]", Vars{}, cb,
		RenderOptions{ErrorBehavior: Silent})
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestRenderFunctionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		kind  *Error
	}{
		{name: "unknown", input: "${[ nope() ]}", kind: ErrFunctionNotFound},
		{name: "failed", input: "${[ fail() ]}", kind: ErrFunctionFailed},
		{name: "missing_context", input: "${[ context() ]}", kind: ErrMissingContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()

			_, err := ParseAndRender(ctx, tt.input, Vars{}, &fakeCallback{}, RenderOptions{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			got, err := ParseAndRender(ctx, "x"+tt.input+"y", Vars{}, &fakeCallback{},
				RenderOptions{ErrorBehavior: Silent})
			require.NoError(t, err)
			assert.Equal(t, "xy", got)
		})
	}
}

func TestRenderWrapsCallbackError(t *testing.T) {
	t.Parallel()

	_, err := ParseAndRender(context.Background(), "${[ fail() ]}", Vars{},
		&fakeCallback{}, RenderOptions{})
	require.Error(t, err)
	assert.Equal(t, "function failed: boom", err.Error())
}

func TestRenderWithoutCallback(t *testing.T) {
	t.Parallel()

	_, err := ParseAndRender(context.Background(), "${[ f() ]}", Vars{}, nil, RenderOptions{})
	assert.ErrorIs(t, err, ErrFunctionNotFound)
	assert.ErrorIs(t, err, ErrNoCallback)
}

func TestRenderSequentialOrder(t *testing.T) {
	t.Parallel()

	cb := &fakeCallback{}
	input := `${[ upper(s: "a") ]}${[ join() ]}${[ upper(s: "b") ]}`

	got, err := ParseAndRender(context.Background(), input, Vars{}, cb, RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "AB", got)
	assert.Equal(t, []string{"upper", "join", "upper"}, cb.calls)
}

func TestRenderVariableCycle(t *testing.T) {
	t.Parallel()

	vars := Vars{
		"a": "${[ b ]}",
		"b": "x${[ a ]}",
	}

	for _, behavior := range []ErrorBehavior{Throw, Silent} {
		_, err := ParseAndRender(context.Background(), "${[ a ]}", vars, nil,
			RenderOptions{ErrorBehavior: behavior})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVariableCycle)
	}
}

func TestRenderMaxDepth(t *testing.T) {
	vars := make(Vars)
	for i := range DefaultMaxDepth + 1 {
		vars[fmt.Sprintf("v%d", i)] = fmt.Sprintf("${[ v%d ]}", i+1)
	}

	vars[fmt.Sprintf("v%d", DefaultMaxDepth+1)] = "end"

	_, err := ParseAndRender(context.Background(), "${[ v0 ]}", vars, nil, RenderOptions{})
	assert.ErrorIs(t, err, ErrMaxDepthExceeded)

	shallow := Vars{"a": "${[ b ]}", "b": "${[ c ]}", "c": "end"}

	got, err := ParseAndRender(context.Background(), "${[ a ]}", shallow, nil, RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "end", got)
}

func TestRenderInvalidVariableValue(t *testing.T) {
	t.Parallel()

	_, err := ParseAndRender(context.Background(), "${[ bad ]}",
		Vars{"bad": "${[ oops"}, nil, RenderOptions{ErrorBehavior: Silent})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidVariable)
	assert.ErrorIs(t, err, ErrParse)
}

func TestRenderCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseAndRender(ctx, "${[ a ]}", Vars{"a": "b"}, nil, RenderOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderValue(t *testing.T) {
	t.Parallel()

	vars := Vars{"key": "name", "val": "Ada", "n": "1"}

	input := map[string]any{
		"${[ key ]}": "${[ val ]}",
		"count":      float64(3),
		"ok":         true,
		"none":       nil,
		"list":       []any{"${[ n ]}", int64(2), false, map[string]any{"x": "${[ val ]}"}},
		"headers":    map[string]string{"X-${[ key ]}": "${[ val ]}"},
		"tags":       []string{"a", "${[ n ]}"},
	}

	got, err := RenderValue(context.Background(), input, vars, nil, RenderOptions{})
	require.NoError(t, err)

	want := map[string]any{
		"name":    "Ada",
		"count":   float64(3),
		"ok":      true,
		"none":    nil,
		"list":    []any{"1", int64(2), false, map[string]any{"x": "Ada"}},
		"headers": map[string]string{"X-name": "Ada"},
		"tags":    []string{"a", "1"},
	}
	assert.Equal(t, want, got)

	assert.Equal(t, "${[ val ]}", input["${[ key ]}"], "input must not be modified")
}

func TestRenderValueErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := RenderValue(ctx, struct{}{}, Vars{}, nil, RenderOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = RenderValue(ctx, map[string]any{"a": []any{"${[ missing ]}"}}, Vars{}, nil,
		RenderOptions{})
	assert.ErrorIs(t, err, ErrVariableNotFound)

	got, err := RenderValue(ctx, map[string]any{"a": []any{"${[ missing ]}"}}, Vars{}, nil,
		RenderOptions{ErrorBehavior: Silent})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{""}}, got)
}

func TestTransformArgs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cb := &fakeCallback{}

	source := `keep ${[  name  ]} ${[ upper( s : "plain" ) ]} ${[ join(a: "x") ]}`
	tokens := MustParse(source)

	out, err := TransformArgs(ctx, tokens, cb)
	require.NoError(t, err)

	assert.Equal(t,
		`keep ${[  name  ]} ${[ upper(s: "T:plain") ]} ${[ join(a: "x") ]}`,
		out.String(),
	)
	assert.Equal(t, source, tokens.String(), "input tokens must not be modified")

	again, err := TransformArgs(ctx, out, cb)
	require.NoError(t, err)
	assert.Equal(t, out.String(), again.String())

	unchanged, err := Transform(ctx, "${[ upper(s: v) ]}", cb)
	require.NoError(t, err)
	assert.Equal(t, "${[ upper(s: v) ]}", unchanged)

	_, err = Transform(ctx, `${[ fail(a: "x") ]}`, cb)
	assert.ErrorIs(t, err, ErrFunctionFailed)
}

func TestErrorBehavior(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Silent, ParseErrorBehavior(" SILENT "))
	assert.Equal(t, Throw, ParseErrorBehavior("throw"))
	assert.Equal(t, Throw, ParseErrorBehavior("bogus"))
	assert.Equal(t, "silent", Silent.String())
}

func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	err := ErrFunctionFailed.Wrap(cause)

	assert.ErrorIs(t, err, ErrFunctionFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrFunctionNotFound)
	assert.ErrorIs(t, err.With(), ErrFunctionFailed)
	assert.Equal(t, "function failed: cause", err.Error())
	assert.Same(t, err, WrapError(err))
}
