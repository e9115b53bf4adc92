package template

import (
	"context"
	"strings"
)

// Callback executes functions on behalf of a render pass.
//
// The renderer calls a Callback one tag at a time, in source order, but
// separate render passes may share one Callback concurrently.
type Callback interface {
	// Functions describes every function the callback can run.
	Functions() []FunctionDescriptor

	// Run executes the named function with resolved argument values.
	Run(ctx context.Context, name string, args map[string]string) (string, error)

	// TransformArg optionally rewrites a literal argument value before it is
	// stored. Implementations return value unchanged when no rewrite applies.
	TransformArg(ctx context.Context, fn, arg, value string) (string, error)
}

// FunctionDescriptor declares a function and its arguments for tooling that
// builds input forms.
type FunctionDescriptor struct {
	Name        string          `json:"name"                  yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"     yaml:"aliases,omitempty"`
	Args        []ArgDescriptor `json:"args,omitempty"        yaml:"args,omitempty"`
}

// ArgDescriptor declares one argument of a function.
type ArgDescriptor struct {
	Name         string `json:"name"                   yaml:"name"`
	Label        string `json:"label,omitempty"        yaml:"label,omitempty"`
	Description  string `json:"description,omitempty"  yaml:"description,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"  yaml:"placeholder,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Optional     bool   `json:"optional,omitempty"     yaml:"optional,omitempty"`
	MultiLine    bool   `json:"multiLine,omitempty"    yaml:"multiLine,omitempty"`
	Password     bool   `json:"password,omitempty"     yaml:"password,omitempty"`
}

// ErrorBehavior selects how a render pass treats missing variables and
// failed functions.
type ErrorBehavior int

const (
	// Throw aborts the render with an error.
	Throw ErrorBehavior = iota // throw
	// Silent substitutes the empty string and continues.
	Silent // silent
)

// String returns the name of the behavior.
func (b ErrorBehavior) String() string {
	switch b {
	case Throw:
		return "throw"
	case Silent:
		return "silent"
	default:
		return "unknown"
	}
}

// ParseErrorBehavior parses "throw" or "silent". Any other input yields
// [Throw].
func ParseErrorBehavior(s string) ErrorBehavior {
	if strings.EqualFold(strings.TrimSpace(s), Silent.String()) {
		return Silent
	}

	return Throw
}

// RenderOptions configures one render pass.
type RenderOptions struct {
	ErrorBehavior ErrorBehavior
}
