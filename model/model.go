// Package model defines the environment and request documents rendered by
// yaak-tmpl.
//
// Documents are YAML (or JSON, which YAML accepts) mappings carrying a
// "model" field that names their kind:
//
//	model: http_request
//	url: ${[ base_url ]}/users/:id
//	urlParameters:
//	  - name: :id
//	    value: ${[ user_id ]}
//
// A single file may hold several documents separated by "---".
package model

import (
	"github.com/subframe7536/yaak/template"
)

// Kind names the type of a document.
type Kind string

const (
	KindEnvironment      Kind = "environment"
	KindHTTPRequest      Kind = "http_request"
	KindGRPCRequest      Kind = "grpc_request"
	KindWebsocketRequest Kind = "websocket_request"
)

func (k Kind) String() string { return string(k) }

// Kinds lists every loadable document kind.
func Kinds() []Kind {
	return []Kind{
		KindEnvironment,
		KindHTTPRequest,
		KindGRPCRequest,
		KindWebsocketRequest,
	}
}

// Model is implemented by every document type.
type Model interface {
	ModelKind() Kind
	ModelName() string
}

// Environment is one named set of variables.
type Environment struct {
	Model       Kind                  `json:"model"                 yaml:"model"`
	ID          string                `json:"id,omitempty"          yaml:"id,omitempty"`
	WorkspaceID string                `json:"workspaceId,omitempty" yaml:"workspaceId,omitempty"`
	Name        string                `json:"name,omitempty"        yaml:"name,omitempty"`
	Variables   []EnvironmentVariable `json:"variables"             yaml:"variables"`
}

// EnvironmentVariable is one variable of an [Environment]. A nil Enabled
// means enabled.
type EnvironmentVariable struct {
	ID      string `json:"id,omitempty"      yaml:"id,omitempty"`
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Name    string `json:"name"              yaml:"name"`
	Value   string `json:"value"             yaml:"value"`
}

func (Environment) ModelKind() Kind     { return KindEnvironment }
func (e Environment) ModelName() string { return e.Name }

// IsEnabled reports whether v takes part in variable resolution.
func (v EnvironmentVariable) IsEnabled() bool { return v.Enabled == nil || *v.Enabled }

// Scope converts e to a template scope.
func (e Environment) Scope() template.Scope {
	s := template.Scope{
		Name:      e.Name,
		Variables: make([]template.Variable, len(e.Variables)),
	}

	for i, v := range e.Variables {
		s.Variables[i] = template.Variable{
			Name:    v.Name,
			Value:   v.Value,
			Enabled: v.IsEnabled(),
		}
	}

	return s
}

// Resolve flattens an environment chain, ordered from most specific to most
// general, into a variable table. See [template.Resolve].
func Resolve(chain ...Environment) template.Vars {
	scopes := make([]template.Scope, len(chain))
	for i, e := range chain {
		scopes[i] = e.Scope()
	}

	return template.Resolve(scopes...)
}

// Pair is a header, URL parameter or metadata entry. A nil Enabled means
// enabled.
type Pair struct {
	ID      string `json:"id,omitempty"      yaml:"id,omitempty"`
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Name    string `json:"name"              yaml:"name"`
	Value   string `json:"value"             yaml:"value"`
}

// IsEnabled reports whether p is sent.
func (p Pair) IsEnabled() bool { return p.Enabled == nil || *p.Enabled }

// HTTPRequest is an HTTP request definition.
type HTTPRequest struct {
	Model              Kind           `json:"model"                        yaml:"model"`
	ID                 string         `json:"id,omitempty"                 yaml:"id,omitempty"`
	WorkspaceID        string         `json:"workspaceId,omitempty"        yaml:"workspaceId,omitempty"`
	FolderID           string         `json:"folderId,omitempty"           yaml:"folderId,omitempty"`
	Name               string         `json:"name,omitempty"               yaml:"name,omitempty"`
	Method             string         `json:"method,omitempty"             yaml:"method,omitempty"`
	URL                string         `json:"url"                          yaml:"url"`
	URLParameters      []Pair         `json:"urlParameters,omitempty"      yaml:"urlParameters,omitempty"`
	Headers            []Pair         `json:"headers,omitempty"            yaml:"headers,omitempty"`
	BodyType           string         `json:"bodyType,omitempty"           yaml:"bodyType,omitempty"`
	Body               map[string]any `json:"body,omitempty"               yaml:"body,omitempty"`
	AuthenticationType string         `json:"authenticationType,omitempty" yaml:"authenticationType,omitempty"`
	Authentication     map[string]any `json:"authentication,omitempty"     yaml:"authentication,omitempty"`
}

func (HTTPRequest) ModelKind() Kind     { return KindHTTPRequest }
func (r HTTPRequest) ModelName() string { return r.Name }

// GRPCRequest is a gRPC call definition.
type GRPCRequest struct {
	Model              Kind           `json:"model"                        yaml:"model"`
	ID                 string         `json:"id,omitempty"                 yaml:"id,omitempty"`
	WorkspaceID        string         `json:"workspaceId,omitempty"        yaml:"workspaceId,omitempty"`
	FolderID           string         `json:"folderId,omitempty"           yaml:"folderId,omitempty"`
	Name               string         `json:"name,omitempty"               yaml:"name,omitempty"`
	URL                string         `json:"url"                          yaml:"url"`
	Service            string         `json:"service,omitempty"            yaml:"service,omitempty"`
	Method             string         `json:"method,omitempty"             yaml:"method,omitempty"`
	Metadata           []Pair         `json:"metadata,omitempty"           yaml:"metadata,omitempty"`
	Message            string         `json:"message,omitempty"            yaml:"message,omitempty"`
	AuthenticationType string         `json:"authenticationType,omitempty" yaml:"authenticationType,omitempty"`
	Authentication     map[string]any `json:"authentication,omitempty"     yaml:"authentication,omitempty"`
}

func (GRPCRequest) ModelKind() Kind     { return KindGRPCRequest }
func (r GRPCRequest) ModelName() string { return r.Name }

// WebsocketRequest is a WebSocket connection definition.
type WebsocketRequest struct {
	Model              Kind           `json:"model"                        yaml:"model"`
	ID                 string         `json:"id,omitempty"                 yaml:"id,omitempty"`
	WorkspaceID        string         `json:"workspaceId,omitempty"        yaml:"workspaceId,omitempty"`
	FolderID           string         `json:"folderId,omitempty"           yaml:"folderId,omitempty"`
	Name               string         `json:"name,omitempty"               yaml:"name,omitempty"`
	URL                string         `json:"url"                          yaml:"url"`
	Headers            []Pair         `json:"headers,omitempty"            yaml:"headers,omitempty"`
	Message            string         `json:"message,omitempty"            yaml:"message,omitempty"`
	AuthenticationType string         `json:"authenticationType,omitempty" yaml:"authenticationType,omitempty"`
	Authentication     map[string]any `json:"authentication,omitempty"     yaml:"authentication,omitempty"`
}

func (WebsocketRequest) ModelKind() Kind     { return KindWebsocketRequest }
func (r WebsocketRequest) ModelName() string { return r.Name }
