// Package xmlfmt pretty-prints XML-like bodies that may contain template
// tags.
//
// Formatting is purely lexical. Markup is never parsed into a tree, so
// malformed input is formatted on a best-effort basis, and template tags,
// comments, CDATA sections and the raw text of every tag are emitted
// byte-for-byte.
package xmlfmt

import (
	"strings"
	"unicode"

	"github.com/subframe7536/yaak/template"
)

// DefaultIndent is the indentation unit used when none is given.
const DefaultIndent = "  "

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	KindOpen      Kind = iota // <name ...>
	KindClose                 // </name>
	KindSelfClose             // <name .../>
	KindComment               // <!-- ... -->
	KindCData                 // <![CDATA[ ... ]]>
	KindProcInst              // <? ... ?>
	KindDoctype               // <! ... >
	KindText                  // text between tags
	KindTemplate              // template tag
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	case KindSelfClose:
		return "self-close"
	case KindComment:
		return "comment"
	case KindCData:
		return "cdata"
	case KindProcInst:
		return "proc-inst"
	case KindDoctype:
		return "doctype"
	case KindText:
		return "text"
	case KindTemplate:
		return "template"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of markup.
type Token struct {
	Kind Kind
	Raw  string // exact source text
	Name string // element name, set for open and close tags only
}

// Format re-indents source using indent as the unit for each nesting level.
//
// An open tag directly followed by a single-line text run and its matching
// close tag is collapsed onto one line. The result has no trailing newline.
func Format(source, indent string) string {
	toks := Tokenize(source)

	var (
		out   strings.Builder
		depth int
	)

	line := func(parts ...string) {
		out.WriteString(strings.Repeat(indent, depth))

		for _, p := range parts {
			out.WriteString(p)
		}

		out.WriteByte('\n')
	}

	for i := 0; i < len(toks); i++ {
		tok := toks[i]

		switch tok.Kind {
		case KindOpen:
			if text, ok := inlineText(toks, i); ok {
				line(tok.Raw, text, toks[i+2].Raw)
				i += 2

				continue
			}

			line(tok.Raw)
			depth++

		case KindClose:
			depth = max(depth-1, 0)
			line(tok.Raw)

		case KindText:
			if trimmed := strings.TrimSpace(tok.Raw); trimmed != "" {
				line(trimmed)
			}

		default:
			line(tok.Raw)
		}
	}

	return strings.TrimSuffix(out.String(), "\n")
}

// inlineText reports whether toks[i] opens a triple that can be written on
// one line, returning the trimmed text if so.
func inlineText(toks []Token, i int) (string, bool) {
	if i+2 >= len(toks) {
		return "", false
	}

	text, closer := toks[i+1], toks[i+2]
	if text.Kind != KindText || closer.Kind != KindClose ||
		closer.Name != toks[i].Name {
		return "", false
	}

	trimmed := strings.TrimSpace(text.Raw)
	if trimmed == "" || strings.Contains(trimmed, "\n") {
		return "", false
	}

	return trimmed, true
}

// Tokenize splits source into markup tokens. Template tags outside of
// markup are single opaque tokens; an unterminated construct extends to the
// end of input.
func Tokenize(source string) []Token {
	s := scanner{src: source}

	var toks []Token

	for !s.eof() {
		toks = append(toks, s.next())
	}

	return toks
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) at(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

// until advances past the next occurrence of end, or to the end of input.
func (s *scanner) until(start int, end string) string {
	if n := strings.Index(s.src[s.pos:], end); n >= 0 {
		s.pos += n + len(end)
	} else {
		s.pos = len(s.src)
	}

	return s.src[start:s.pos]
}

func (s *scanner) next() Token {
	start := s.pos

	switch {
	case s.at(template.Open):
		s.pos += len(template.Open)

		return Token{Kind: KindTemplate, Raw: s.until(start, template.Close)}

	case s.at("<!--"):
		s.pos += len("<!--")

		return Token{Kind: KindComment, Raw: s.until(start, "-->")}

	case s.at("<![CDATA["):
		s.pos += len("<![CDATA[")

		return Token{Kind: KindCData, Raw: s.until(start, "]]>")}

	case s.at("<?"):
		s.pos += len("<?")

		return Token{Kind: KindProcInst, Raw: s.until(start, "?>")}

	case s.at("<!"):
		s.pos += len("<!")

		return Token{Kind: KindDoctype, Raw: s.until(start, ">")}

	case s.at("<"):
		return s.tag()
	}

	for !s.eof() && s.src[s.pos] != '<' && !s.at(template.Open) {
		s.pos++
	}

	return Token{Kind: KindText, Raw: s.src[start:s.pos]}
}

// tag scans an open, close or self-closing tag. A '>' inside a quoted
// attribute value does not end the tag.
func (s *scanner) tag() Token {
	start := s.pos
	s.pos++ // '<'

	closing := s.at("/")
	if closing {
		s.pos++
	}

	var quote byte

	for !s.eof() {
		c := s.src[s.pos]
		s.pos++

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return s.tagToken(start, closing)
		}
	}

	return s.tagToken(start, closing)
}

func (s *scanner) tagToken(start int, closing bool) Token {
	raw := s.src[start:s.pos]

	switch {
	case closing:
		name := raw[2:]
		if n := strings.IndexByte(name, '>'); n >= 0 {
			name = name[:n]
		}

		return Token{Kind: KindClose, Raw: raw, Name: name}

	case len(raw) >= 2 && raw[len(raw)-2] == '/':
		return Token{Kind: KindSelfClose, Raw: raw}

	default:
		name := raw[1:]
		if n := strings.IndexFunc(name, func(r rune) bool {
			return unicode.IsSpace(r) || r == '>' || r == '/'
		}); n >= 0 {
			name = name[:n]
		}

		return Token{Kind: KindOpen, Raw: raw, Name: name}
	}
}
