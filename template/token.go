package template

import (
	"strings"
)

// TokenKind distinguishes literal text from interpolation sites.
type TokenKind int

const (
	KindRaw TokenKind = iota // raw
	KindTag                  // tag
)

// String returns the name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Token is one parsed unit of template source: literal text or a tag.
//
// A token produced by [Parse] remembers the exact source span it was read
// from, so [Token.String] reproduces the input byte for byte. Tokens built
// with [Raw] or [Tag], or rewritten by [TransformArgs], serialize
// canonically instead.
type Token struct {
	Kind TokenKind
	// Text is the literal output of a raw token, with escape backslashes
	// already removed.
	Text string
	// Value is the content of a tag token.
	Value Value

	src string
}

// Raw returns a literal text token.
func Raw(text string) Token {
	return Token{Kind: KindRaw, Text: text}
}

// Tag returns an interpolation token holding v.
func Tag(v Value) Token {
	return Token{Kind: KindTag, Value: v}
}

// Source returns the original source span of t, or the empty string if t
// was not produced by the parser.
func (t Token) Source() string { return t.src }

// String serializes t back to template source.
func (t Token) String() string {
	if t.src != "" {
		return t.src
	}

	switch t.Kind {
	case KindRaw:
		return Escape(t.Text)

	case KindTag:
		return Open + " " + t.Value.String() + " " + Close

	default:
		return ""
	}
}

// Tokens is an ordered sequence of tokens.
type Tokens []Token

// String concatenates the serialized form of every token.
func (ts Tokens) String() string {
	var buf strings.Builder

	for _, t := range ts {
		buf.WriteString(t.String())
	}

	return buf.String()
}

// Tags returns the tag tokens of ts in source order.
func (ts Tokens) Tags() []Token {
	tags := make([]Token, 0, len(ts))

	for _, t := range ts {
		if t.Kind == KindTag {
			tags = append(tags, t)
		}
	}

	return tags
}

// ValueKind distinguishes the contents of a tag or function argument.
type ValueKind int

const (
	ValueStr ValueKind = iota // str
	ValueVar                  // var
	ValueFn                   // fn
)

// String returns the name of the value kind.
func (k ValueKind) String() string {
	switch k {
	case ValueStr:
		return "str"
	case ValueVar:
		return "var"
	case ValueFn:
		return "fn"
	default:
		return "unknown"
	}
}

// Value is a string literal, a variable reference, or a function call.
type Value struct {
	Kind ValueKind
	// Text holds the literal of a [ValueStr].
	Text string
	// Name holds the identifier of a [ValueVar] or [ValueFn].
	Name string
	// Args holds the arguments of a [ValueFn].
	Args []FnArg
}

// FnArg is a named function argument. Its value is a [ValueStr] or a
// [ValueVar]; calls do not nest.
type FnArg struct {
	Name  string
	Value Value
}

// Str returns a string literal value.
func Str(text string) Value { return Value{Kind: ValueStr, Text: text} }

// Var returns a variable reference.
func Var(name string) Value { return Value{Kind: ValueVar, Name: name} }

// Fn returns a function call value.
func Fn(name string, args ...FnArg) Value {
	return Value{Kind: ValueFn, Name: name, Args: args}
}

// Arg returns a named function argument.
func Arg(name string, v Value) FnArg { return FnArg{Name: name, Value: v} }

// Arg returns the argument of a function call with the given name.
func (v Value) Arg(name string) (FnArg, bool) {
	for _, a := range v.Args {
		if a.Name == name {
			return a, true
		}
	}

	return FnArg{}, false
}

// String serializes v in canonical form.
func (v Value) String() string {
	switch v.Kind {
	case ValueStr:
		return quote(v.Text)

	case ValueVar:
		return v.Name

	case ValueFn:
		var buf strings.Builder

		buf.WriteString(v.Name)
		buf.WriteByte('(')

		for i, a := range v.Args {
			if i > 0 {
				buf.WriteString(", ")
			}

			buf.WriteString(a.Name)
			buf.WriteString(": ")
			buf.WriteString(a.Value.String())
		}

		buf.WriteByte(')')

		return buf.String()

	default:
		return ""
	}
}

// quote wraps s in double quotes, escaping backslashes and double quotes.
func quote(s string) string {
	var buf strings.Builder

	buf.Grow(len(s) + 2)
	buf.WriteByte('"')

	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			buf.WriteByte('\\')
		}

		buf.WriteByte(s[i])
	}

	buf.WriteByte('"')

	return buf.String()
}
