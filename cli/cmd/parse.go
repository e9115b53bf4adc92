package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/template"
)

// Parse parses a template and prints its tokens.
type Parse struct {
	YAML   ParseYAML   `cmd:"" default:"withargs" help:"Print tokens as YAML (default)."`
	JSON   ParseJSON   `cmd:""                    help:"Print tokens as JSON."`
	Tokens ParseTokens `cmd:""                    help:"Print each tag in canonical form, one per line."`
}

// parseSource is the template argument shared by the parse subcommands.
type parseSource struct {
	Template string `arg:"" help:"Template text or '-' for stdin (default: source files)" name:"template" optional:""`

	out io.Writer
}

func (p *parseSource) tokens(ctx context.Context, format string) (template.Tokens, error) {
	src, err := input(ctx, p.Template)
	if err != nil {
		return nil, err
	}

	tokens, err := template.Parse(src)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "parsed template",
		slog.String("format", format),
		slog.Int("tokens", len(tokens)),
	)

	return tokens, nil
}

func (p *parseSource) writer() io.Writer {
	if p.out == nil {
		return os.Stdout
	}

	return p.out
}

// ParseYAML prints the parsed tokens as YAML.
type ParseYAML struct {
	parseSource
}

// Run executes the parse yaml command.
func (p *ParseYAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tokens, err := p.tokens(ctx, FormatYAML)
	if err != nil {
		return err
	}

	return encode(p.writer(), FormatYAML, tokens.Nodes())
}

// ParseJSON prints the parsed tokens as JSON.
type ParseJSON struct {
	parseSource
}

// Run executes the parse json command.
func (p *ParseJSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tokens, err := p.tokens(ctx, FormatJSON)
	if err != nil {
		return err
	}

	return encode(p.writer(), FormatJSON, tokens.Nodes())
}

// ParseTokens prints the canonical form of every tag.
type ParseTokens struct {
	parseSource
}

// Run executes the parse tokens command.
func (p *ParseTokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tokens, err := p.tokens(ctx, "tokens")
	if err != nil {
		return err
	}

	w := p.writer()

	for _, t := range tokens.Tags() {
		tag := template.Tag(t.Value)

		if _, err := fmt.Fprintln(w, tag.String()); err != nil {
			return err
		}
	}

	return nil
}
