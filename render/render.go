// Package render renders request documents against an environment chain.
//
// Each renderer resolves the variable table once, then renders every
// templated field in a fixed order. The first failing field aborts the
// render and no partial request is returned. Fields that are not templated
// (IDs, method, body type) are copied unchanged, and the input request is
// never modified.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/model"
	"github.com/subframe7536/yaak/template"
)

// Template renders a single template string.
func Template(
	ctx context.Context,
	source string,
	chain []model.Environment,
	cb template.Callback,
	opts template.RenderOptions,
) (string, error) {
	return template.ParseAndRender(ctx, source, model.Resolve(chain...), cb, opts)
}

// JSONValue renders every string of a decoded JSON value.
func JSONValue(
	ctx context.Context,
	value any,
	chain []model.Environment,
	cb template.Callback,
	opts template.RenderOptions,
) (any, error) {
	return template.RenderValue(ctx, value, model.Resolve(chain...), cb, opts)
}

// HTTPRequest renders the URL parameters, headers, body, authentication and
// URL of r, then applies path placeholders to the rendered URL.
func HTTPRequest(
	ctx context.Context,
	r model.HTTPRequest,
	chain []model.Environment,
	cb template.Callback,
	opts template.RenderOptions,
) (model.HTTPRequest, error) {
	f := newFields(ctx, chain, cb, opts)
	out := r

	out.URLParameters = f.pairs("urlParameters", r.URLParameters)
	out.Headers = f.pairs("headers", r.Headers)
	out.Body = f.object("body", r.Body)
	out.Authentication = f.object("authentication", r.Authentication)
	out.URL = f.text("url", r.URL)

	if f.err != nil {
		return model.HTTPRequest{}, f.err
	}

	out.URL, out.URLParameters = ApplyPathPlaceholders(out.URL, out.URLParameters)

	log.DebugContext(ctx, "rendered request",
		slog.String("model", r.ModelKind().String()),
		slog.String("name", r.Name))

	return out, nil
}

// GRPCRequest renders the metadata, authentication, URL and message of r.
func GRPCRequest(
	ctx context.Context,
	r model.GRPCRequest,
	chain []model.Environment,
	cb template.Callback,
	opts template.RenderOptions,
) (model.GRPCRequest, error) {
	f := newFields(ctx, chain, cb, opts)
	out := r

	out.Metadata = f.pairs("metadata", r.Metadata)
	out.Authentication = f.object("authentication", r.Authentication)
	out.URL = f.text("url", r.URL)
	out.Message = f.text("message", r.Message)

	if f.err != nil {
		return model.GRPCRequest{}, f.err
	}

	log.DebugContext(ctx, "rendered request",
		slog.String("model", r.ModelKind().String()),
		slog.String("name", r.Name))

	return out, nil
}

// WebsocketRequest renders the headers, authentication, URL and message of
// r.
func WebsocketRequest(
	ctx context.Context,
	r model.WebsocketRequest,
	chain []model.Environment,
	cb template.Callback,
	opts template.RenderOptions,
) (model.WebsocketRequest, error) {
	f := newFields(ctx, chain, cb, opts)
	out := r

	out.Headers = f.pairs("headers", r.Headers)
	out.Authentication = f.object("authentication", r.Authentication)
	out.URL = f.text("url", r.URL)
	out.Message = f.text("message", r.Message)

	if f.err != nil {
		return model.WebsocketRequest{}, f.err
	}

	log.DebugContext(ctx, "rendered request",
		slog.String("model", r.ModelKind().String()),
		slog.String("name", r.Name))

	return out, nil
}

// Request renders any request document. Environments cannot be rendered.
func Request(
	ctx context.Context,
	m model.Model,
	chain []model.Environment,
	cb template.Callback,
	opts template.RenderOptions,
) (model.Model, error) {
	switch r := m.(type) {
	case model.HTTPRequest:
		return HTTPRequest(ctx, r, chain, cb, opts)
	case model.GRPCRequest:
		return GRPCRequest(ctx, r, chain, cb, opts)
	case model.WebsocketRequest:
		return WebsocketRequest(ctx, r, chain, cb, opts)
	default:
		return nil, template.ErrUnsupportedValue.With(
			slog.String("model", m.ModelKind().String()),
		)
	}
}

// fields renders the fields of one request. After the first failure every
// further call is a no-op and err holds the failure.
type fields struct {
	ctx  context.Context
	vars template.Vars
	cb   template.Callback
	opts template.RenderOptions
	err  error
}

func newFields(
	ctx context.Context,
	chain []model.Environment,
	cb template.Callback,
	opts template.RenderOptions,
) *fields {
	return &fields{ctx: ctx, vars: model.Resolve(chain...), cb: cb, opts: opts}
}

func (f *fields) fail(field string, err error) {
	f.err = fmt.Errorf("%s: %w", field, err)
}

func (f *fields) text(field, s string) string {
	if f.err != nil {
		return ""
	}

	out, err := template.ParseAndRender(f.ctx, s, f.vars, f.cb, f.opts)
	if err != nil {
		f.fail(field, err)

		return ""
	}

	return out
}

func (f *fields) pairs(field string, ps []model.Pair) []model.Pair {
	if ps == nil {
		return nil
	}

	out := make([]model.Pair, len(ps))

	for i, p := range ps {
		out[i] = model.Pair{
			ID:      p.ID,
			Enabled: p.Enabled,
			Name:    f.text(fmt.Sprintf("%s[%d].name", field, i), p.Name),
			Value:   f.text(fmt.Sprintf("%s[%d].value", field, i), p.Value),
		}
	}

	return out
}

// object renders the values of m. Top-level keys are field names and are
// kept as written.
func (f *fields) object(field string, m map[string]any) map[string]any {
	if m == nil || f.err != nil {
		return nil
	}

	out := make(map[string]any, len(m))

	for _, k := range slices.Sorted(maps.Keys(m)) {
		v, err := template.RenderValue(f.ctx, m[k], f.vars, f.cb, f.opts)
		if err != nil {
			f.fail(field+"."+k, err)

			return nil
		}

		out[k] = v
	}

	return out
}
