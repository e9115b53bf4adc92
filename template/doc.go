// Package template implements the interpolation language embedded in request
// definitions.
//
// # Syntax
//
// Literal text is interleaved with tags delimited by [Open] and [Close]:
//
//	https://${[ host ]}/users/${[ uuid.v4() ]}
//	Bearer ${[ secure(value: "YENC_...") ]}
//	${[ keychain(service: "github", account = user) ]}
//
// A tag holds a variable reference or a function call with named arguments.
// Argument values are quoted strings or variable references. A literal [Open]
// is written with a leading backslash (see [Escape]).
//
// # Pipeline
//
// [Parse] produces [Tokens]; [Resolve] flattens an environment chain into
// [Vars]; [Render] walks the tokens, substituting variables and calling a
// [Callback] for functions. [RenderValue] applies the same rendering to
// every string of a decoded JSON or YAML document.
//
// Serializing parsed tokens with [Tokens.String] reproduces the source byte
// for byte, so [TransformArgs] can rewrite individual function arguments
// (for example, encrypting a secret) and save the result without disturbing
// anything else.
package template
