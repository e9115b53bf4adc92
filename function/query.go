package function

import (
	"context"
	"strings"

	"github.com/beevik/etree"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/subframe7536/yaak/template"
)

// JSONPath queries a JSON document. A single string result is returned
// as-is, any other single result as JSON, and several results as a JSON
// array. No match yields "".
func JSONPath() Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "json.path",
			Description: "Filter JSON-formatted text using JSONPath syntax",
			Args: []template.ArgDescriptor{
				{Name: "input", Label: "Input", MultiLine: true, Placeholder: `{ "foo": "bar" }`},
				{Name: "query", Label: "Query", Placeholder: "$..foo"},
			},
		},
		Fn: func(_ context.Context, call Call) (string, error) {
			data, err := oj.ParseString(call.Arg("input"))
			if err != nil {
				return "", ErrInvalidArgument.Wrap(err)
			}

			x, err := jp.ParseString(call.Arg("query"))
			if err != nil {
				return "", ErrInvalidArgument.Wrap(err)
			}

			results := x.Get(data)

			switch len(results) {
			case 0:
				return "", nil
			case 1:
				if s, ok := results[0].(string); ok {
					return s, nil
				}

				return oj.JSON(results[0]), nil
			default:
				return oj.JSON(results), nil
			}
		},
	}
}

// XMLPath queries an XML document with etree's XPath subset. Element
// matches yield their trimmed text; a trailing "/@attr" step selects an
// attribute. Several matches are joined with newlines.
func XMLPath() Function {
	return Func{
		Desc: template.FunctionDescriptor{
			Name:        "xml.path",
			Description: "Filter XML-formatted text using XPath syntax",
			Args: []template.ArgDescriptor{
				{Name: "input", Label: "Input", MultiLine: true, Placeholder: "<foo></foo>"},
				{Name: "query", Label: "Query", Placeholder: "//foo"},
			},
		},
		Fn: func(_ context.Context, call Call) (string, error) {
			doc := etree.NewDocument()
			if err := doc.ReadFromString(call.Arg("input")); err != nil {
				return "", ErrInvalidArgument.Wrap(err)
			}

			query := call.Arg("query")

			attr := ""
			if i := strings.LastIndex(query, "/@"); i >= 0 {
				query, attr = query[:i], query[i+2:]
			}

			path, err := etree.CompilePath(query)
			if err != nil {
				return "", ErrInvalidArgument.Wrap(err)
			}

			var out []string

			for _, el := range doc.FindElementsPath(path) {
				switch {
				case attr == "":
					out = append(out, strings.TrimSpace(el.Text()))
				case el.SelectAttr(attr) != nil:
					out = append(out, el.SelectAttrValue(attr, ""))
				}
			}

			return strings.Join(out, "\n"), nil
		},
	}
}
