package model

import (
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/subframe7536/yaak/pkg"
)

// Decode parses every document in data. Empty documents are skipped.
func Decode(data []byte) ([]Model, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, pkg.ErrYAMLMarshal.Wrap(err)
	}

	var models []Model

	for _, doc := range file.Docs {
		if doc == nil || doc.Body == nil {
			continue
		}

		m, err := decodeNode(doc.Body)
		if err != nil {
			return nil, err
		}

		models = append(models, m)
	}

	return models, nil
}

// Load reads and decodes every document from r.
func Load(r io.Reader) ([]Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	return Decode(data)
}

// LoadFile reads and decodes every document of the named file.
func LoadFile(path string) ([]Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	models, err := Decode(data)
	if err != nil {
		return nil, pkg.MakeError(err).Wrapf("%s", path)
	}

	return models, nil
}

func decodeNode(node ast.Node) (Model, error) {
	var head struct {
		Model Kind `yaml:"model"`
	}

	if err := yaml.NodeToValue(node, &head); err != nil {
		return nil, pkg.ErrYAMLMarshal.Wrap(err)
	}

	switch head.Model {
	case KindEnvironment:
		return decodeAs[Environment](node)
	case KindHTTPRequest:
		return decodeAs[HTTPRequest](node)
	case KindGRPCRequest:
		return decodeAs[GRPCRequest](node)
	case KindWebsocketRequest:
		return decodeAs[WebsocketRequest](node)
	}

	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}

	return nil, pkg.ErrUnknownModel.Wrapf(
		"%q (expected one of: %s)", head.Model, strings.Join(names, ", "),
	)
}

func decodeAs[T Model](node ast.Node) (Model, error) {
	var m T

	if err := yaml.NodeToValue(node, &m); err != nil {
		return nil, pkg.ErrYAMLMarshal.Wrap(err)
	}

	return m, nil
}

// Environments returns the environments of models in order.
func Environments(models []Model) []Environment {
	var out []Environment

	for _, m := range models {
		if e, ok := m.(Environment); ok {
			out = append(out, e)
		}
	}

	return out
}

// Requests returns every model that is not an environment, in order.
func Requests(models []Model) []Model {
	var out []Model

	for _, m := range models {
		if m.ModelKind() != KindEnvironment {
			out = append(out, m)
		}
	}

	return out
}

// FindEnvironment returns the environment of models whose name or ID is
// name.
func FindEnvironment(models []Model, name string) (Environment, error) {
	for _, e := range Environments(models) {
		if e.Name == name || (e.ID != "" && e.ID == name) {
			return e, nil
		}
	}

	return Environment{}, ErrEnvironmentNotFound.Wrapf("%q", name)
}

// ErrEnvironmentNotFound is returned when a named environment is not
// defined.
var ErrEnvironmentNotFound = pkg.MakeErrorf("environment not found")
