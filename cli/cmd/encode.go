package cmd

import (
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/subframe7536/yaak/pkg"
)

// Output formats for structured command output.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

const outputIndent = 2

// encode writes v to w in format.
func encode(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return pkg.ErrJSONMarshal.Wrap(err)
		}

		data = append(data, '\n')

	case FormatYAML, "":
		data, err = yaml.MarshalWithOptions(v,
			yaml.Indent(outputIndent),
			yaml.IndentSequence(true),
		)
		if err != nil {
			return pkg.ErrYAMLMarshal.Wrap(err)
		}

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q (expected %s or %s)", format, FormatYAML, FormatJSON)
	}

	if _, err := w.Write(data); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}

// encodeDocuments writes docs to w: as one JSON array, or as YAML
// documents separated by "---".
func encodeDocuments(w io.Writer, format string, docs []any) error {
	if format == FormatJSON {
		if docs == nil {
			docs = []any{}
		}

		return encode(w, format, docs)
	}

	for i, doc := range docs {
		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return pkg.ErrWriteOutput.Wrap(err)
			}
		}

		if err := encode(w, format, doc); err != nil {
			return err
		}
	}

	return nil
}
