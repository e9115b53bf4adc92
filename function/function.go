// Package function provides the named functions a template can call.
//
// A [Registry] holds a fixed set of [Function] values registered by name and
// alias. [Registry.Bind] ties the registry to a [Window] and returns the
// [template.Callback] a render pass uses. Functions that rewrite their
// arguments before storage also implement [ArgTransformer].
//
// The built-in functions are:
//
//	secure              decrypt a workspace-encrypted value
//	keychain, keyring   read a password from the OS credential store
//	timestamp           current Unix time in milliseconds
//	datetime.iso        current time as an ISO 8601 string
//	datetime.calculate  shift a date by offsets such as "-5d, +2h"
//	regex.match         extract text with a regular expression
//	regex.replace       replace text with a regular expression
//	uuid.v4, uuid.v7    random and time-ordered UUIDs
//	json.path           query JSON with a JSONPath expression
//	xml.path            query XML with an XPath expression
//	expr                evaluate an expr-lang expression
//	fs.readFile         read a file in a chosen encoding
//	prompt.text         ask the user for a value
package function

import (
	"context"
	"strings"

	"github.com/subframe7536/yaak/template"
)

// Purpose describes why a template is being rendered.
type Purpose int

const (
	PurposeSend    Purpose = iota // send
	PurposePreview                // preview
)

func (p Purpose) String() string {
	switch p {
	case PurposeSend:
		return "send"
	case PurposePreview:
		return "preview"
	default:
		return "unknown"
	}
}

// ParsePurpose parses "send" or "preview". Any other input yields
// [PurposeSend].
func ParsePurpose(s string) Purpose {
	if strings.EqualFold(strings.TrimSpace(s), PurposePreview.String()) {
		return PurposePreview
	}

	return PurposeSend
}

// Window identifies where a render was requested from.
type Window struct {
	Label         string
	WorkspaceID   string
	EnvironmentID string
	Purpose       Purpose
}

// Call is one invocation of a function.
type Call struct {
	Window Window
	Args   map[string]string
}

// Arg returns the value of the named argument, or "" if it is absent.
func (c Call) Arg(name string) string { return c.Args[name] }

// Function is a named operation callable from a template.
type Function interface {
	Descriptor() template.FunctionDescriptor
	Run(ctx context.Context, call Call) (string, error)
}

// ArgTransformer is implemented by functions that rewrite literal argument
// values before they are stored.
type ArgTransformer interface {
	TransformArg(ctx context.Context, w Window, arg, value string) (string, error)
}

// Func adapts a descriptor and a plain function to [Function].
type Func struct {
	Desc template.FunctionDescriptor
	Fn   func(ctx context.Context, call Call) (string, error)
}

func (f Func) Descriptor() template.FunctionDescriptor { return f.Desc }

func (f Func) Run(ctx context.Context, call Call) (string, error) {
	return f.Fn(ctx, call)
}
