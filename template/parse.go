package template

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse splits source into raw text and tag tokens.
//
// Inside a tag, content is either a bare identifier (a variable reference)
// or a call `name(arg: value, ...)` whose values are quoted string literals
// or identifiers. Argument names may be separated from their values with
// ':' or '='. Quoted strings accept '"', '\'' and '`' and may contain the
// tag delimiters verbatim.
//
// An occurrence of [Open] preceded by an odd number of backslashes is
// literal text; the escaping backslash is removed from the raw token's
// [Token.Text] but kept in its source span.
func Parse(source string) (Tokens, error) {
	p := &parser{
		input: []byte(source),
		line:  1,
		col:   1,
	}

	return p.parseTokens()
}

// MustParse is like [Parse] but panics on error.
func MustParse(source string) Tokens {
	ts, err := Parse(source)
	if err != nil {
		panic(err)
	}

	return ts
}

// parser holds the parser state.
type parser struct {
	input []byte
	pos   int
	line  int
	col   int
}

// parseTokens parses the entire input.
func (p *parser) parseTokens() (Tokens, error) {
	var tokens Tokens

	rawStart := 0

	flush := func() {
		if p.pos > rawStart {
			span := string(p.input[rawStart:p.pos])
			tokens = append(tokens, Token{
				Kind: KindRaw,
				Text: Unescape(span),
				src:  span,
			})
		}
	}

	for !p.eof() {
		if p.peekN(len(Open)) != Open || IsEscaped(string(p.input), p.pos) {
			p.advance()

			continue
		}

		flush()

		tag, err := p.parseTag()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tag)
		rawStart = p.pos
	}

	flush()

	return tokens, nil
}

// parseTag parses: Open Expression Close.
func (p *parser) parseTag() (Token, error) {
	start := p.pos
	open := p.position()

	p.advanceN(len(Open))
	p.skipWhitespace()

	if p.eof() {
		return Token{}, p.errorAt(open, "unterminated tag")
	}

	value, err := p.parseExpression()
	if err != nil {
		return Token{}, err
	}

	p.skipWhitespace()

	if p.eof() {
		return Token{}, p.errorAt(open, "unterminated tag")
	}

	if p.peekN(len(Close)) != Close {
		return Token{}, p.errorf("expected %q", Close)
	}

	p.advanceN(len(Close))

	return Token{
		Kind:  KindTag,
		Value: value,
		src:   string(p.input[start:p.pos]),
	}, nil
}

// parseExpression parses: Identifier | Identifier '(' Args ')'.
func (p *parser) parseExpression() (Value, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return Value{}, err
	}

	p.skipWhitespace()

	if p.peek() != '(' {
		return Var(name), nil
	}

	args, err := p.parseArgs()
	if err != nil {
		return Value{}, err
	}

	return Fn(name, args...), nil
}

// parseArgs parses: '(' [Arg {',' Arg} [',']] ')'.
func (p *parser) parseArgs() ([]FnArg, error) {
	open := p.position()

	p.advance() // skip '('

	var args []FnArg

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, p.errorAt(open, "unbalanced parentheses")
		}

		if p.expect(')') {
			return args, nil
		}

		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		p.skipWhitespace()

		switch {
		case p.eof():
			return nil, p.errorAt(open, "unbalanced parentheses")

		case p.expect(','):
			continue

		case p.expect(')'):
			return args, nil

		default:
			return nil, p.errorf("expected ',' or ')'")
		}
	}
}

// parseArg parses: Identifier (':' | '=') (String | Identifier).
func (p *parser) parseArg() (FnArg, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return FnArg{}, err
	}

	p.skipWhitespace()

	if !p.expect(':') && !p.expect('=') {
		return FnArg{}, p.errorf("expected ':' after argument %q", name)
	}

	p.skipWhitespace()

	switch ch := p.peek(); {
	case isQuote(ch):
		text, err := p.parseString(ch)
		if err != nil {
			return FnArg{}, err
		}

		return Arg(name, Str(text)), nil

	case isIdentifier(ch):
		at := p.position()

		ref, err := p.parseIdentifier()
		if err != nil {
			return FnArg{}, err
		}

		p.skipWhitespace()

		if p.peek() == '(' {
			return FnArg{}, p.errorAt(at, "nested function calls are not supported")
		}

		return Arg(name, Var(ref)), nil

	default:
		return FnArg{}, p.errorf("expected string or identifier for argument %q", name)
	}
}

// parseString parses a quoted string literal and returns its unquoted text.
// A backslash followed by a quote character or another backslash yields
// that character; any other backslash is kept.
func (p *parser) parseString(quote rune) (string, error) {
	open := p.position()

	p.advance() // skip opening quote

	var buf strings.Builder

	for !p.eof() {
		ch := p.peek()

		if ch == '\\' {
			p.advance()

			if p.eof() {
				break
			}

			next := p.peek()
			if !isQuote(next) && next != '\\' {
				buf.WriteRune('\\')
			}

			buf.WriteRune(next)
			p.advance()

			continue
		}

		if ch == quote {
			p.advance()

			return buf.String(), nil
		}

		buf.WriteRune(ch)
		p.advance()
	}

	return "", p.errorAt(open, "unterminated string")
}

// parseIdentifier parses an identifier token.
func (p *parser) parseIdentifier() (string, error) {
	start := p.pos

	if p.eof() {
		return "", p.errorf("unexpected end of input")
	}

	if !isIdentifier(p.peek()) {
		return "", p.errorf("expected identifier")
	}

	for !p.eof() && isIdentifier(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos]), nil
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) advanceN(n int) {
	for range n {
		p.advance()
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return p.errorAt(p.position(), fmt.Sprintf(format, args...))
}

func (p *parser) errorAt(pos Position, reason string) *ParseError {
	return &ParseError{
		Pos:    pos,
		Reason: reason,
		Source: string(p.input),
	}
}

// Character classification

func isIdentifier(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '_' || r == '-' || r == '.'
}

func isQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '`'
}
