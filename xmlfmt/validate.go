package xmlfmt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/subframe7536/yaak/template"
)

var (
	ErrMalformed = errors.New("malformed XML")
	ErrNoRoot    = errors.New("XML document has no root element")
)

// Validate reports whether source is well-formed XML once its template tags
// are blanked out. A tag directly following '=' becomes an empty quoted
// attribute value; any other tag is removed.
func Validate(source string) error {
	doc := etree.NewDocument()

	if err := doc.ReadFromString(blankTemplates(source)); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if doc.Root() == nil {
		return ErrNoRoot
	}

	return nil
}

func blankTemplates(source string) string {
	if !strings.Contains(source, template.Open) {
		return source
	}

	var sb strings.Builder

	for _, tok := range Tokenize(source) {
		switch tok.Kind {
		case KindTemplate:
			continue

		case KindOpen, KindSelfClose:
			sb.WriteString(blankAttributes(tok.Raw))

		default:
			sb.WriteString(tok.Raw)
		}
	}

	return sb.String()
}

// blankAttributes rewrites template tags embedded in the raw text of a
// start tag.
func blankAttributes(raw string) string {
	var sb strings.Builder

	for {
		i := strings.Index(raw, template.Open)
		if i < 0 {
			sb.WriteString(raw)

			return sb.String()
		}

		before := raw[:i]
		sb.WriteString(before)

		if strings.HasSuffix(strings.TrimRight(before, " \t\r\n"), "=") {
			sb.WriteString(`""`)
		}

		rest := raw[i+len(template.Open):]
		if j := strings.Index(rest, template.Close); j >= 0 {
			raw = rest[j+len(template.Close):]
		} else {
			raw = ""
		}
	}
}
