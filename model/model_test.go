package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subframe7536/yaak/pkg"
	"github.com/subframe7536/yaak/template"
)

const workspace = `
model: environment
name: base
variables:
  - name: host
    value: api.example.com
  - name: token
    value: base-token
  - name: debug
    value: "true"
    enabled: false
---
model: environment
name: dev
variables:
  - name: token
    value: dev-token
  - name: empty
    value: ""
---
model: http_request
name: Get user
method: GET
url: https://${[ host ]}/users/:id
urlParameters:
  - name: :id
    value: ${[ user_id ]}
  - name: verbose
    value: "1"
    enabled: false
headers:
  - name: Authorization
    value: Bearer ${[ token ]}
body:
  text: hello ${[ name ]}
  count: 3
authentication:
  token: ${[ token ]}
`

func TestDecode(t *testing.T) {
	models, err := Decode([]byte(workspace))
	require.NoError(t, err)
	require.Len(t, models, 3)

	envs := Environments(models)
	require.Len(t, envs, 2)
	assert.Equal(t, "base", envs[0].Name)
	assert.True(t, envs[0].Variables[0].IsEnabled())
	assert.False(t, envs[0].Variables[2].IsEnabled())

	reqs := Requests(models)
	require.Len(t, reqs, 1)

	req, ok := reqs[0].(HTTPRequest)
	require.True(t, ok)
	assert.Equal(t, KindHTTPRequest, req.ModelKind())
	assert.Equal(t, "Get user", req.ModelName())
	assert.Equal(t, "https://${[ host ]}/users/:id", req.URL)
	require.Len(t, req.URLParameters, 2)
	assert.True(t, req.URLParameters[0].IsEnabled())
	assert.False(t, req.URLParameters[1].IsEnabled())
	assert.Equal(t, "Bearer ${[ token ]}", req.Headers[0].Value)
	assert.Equal(t, "hello ${[ name ]}", req.Body["text"])
	assert.EqualValues(t, 3, req.Body["count"])
	assert.Equal(t, "${[ token ]}", req.Authentication["token"])
}

func TestDecodeJSON(t *testing.T) {
	models, err := Decode([]byte(`{
		"model": "websocket_request",
		"url": "wss://${[ host ]}/ws",
		"headers": [{"name": "X-Id", "value": "${[ id ]}"}],
		"message": "{\"hello\": \"${[ name ]}\"}"
	}`))
	require.NoError(t, err)
	require.Len(t, models, 1)

	ws, ok := models[0].(WebsocketRequest)
	require.True(t, ok)
	assert.Equal(t, "wss://${[ host ]}/ws", ws.URL)
	assert.Equal(t, `{"hello": "${[ name ]}"}`, ws.Message)
}

func TestDecodeGRPC(t *testing.T) {
	models, err := Decode([]byte(`
model: grpc_request
url: localhost:50051
service: helloworld.Greeter
method: SayHello
metadata:
  - name: x-token
    value: ${[ token ]}
message: '{"name": "${[ name ]}"}'
`))
	require.NoError(t, err)
	require.Len(t, models, 1)

	g, ok := models[0].(GRPCRequest)
	require.True(t, ok)
	assert.Equal(t, "helloworld.Greeter", g.Service)
	assert.Equal(t, "${[ token ]}", g.Metadata[0].Value)
	assert.Equal(t, `{"name": "${[ name ]}"}`, g.Message)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown model", "model: folder\n", pkg.ErrUnknownModel},
		{"missing model", "name: nothing\n", pkg.ErrUnknownModel},
		{"not a mapping", "- a\n- b\n", pkg.ErrYAMLMarshal},
		{"bad syntax", "model: [\n", pkg.ErrYAMLMarshal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	models, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestResolve(t *testing.T) {
	models, err := Decode([]byte(workspace))
	require.NoError(t, err)

	envs := Environments(models)
	base, dev := envs[0], envs[1]

	vars := Resolve(dev, base)
	assert.Equal(t, template.Vars{
		"host":  "api.example.com",
		"token": "dev-token",
	}, vars)

	assert.Equal(t, "base-token", Resolve(base)["token"])
}

func TestFindEnvironment(t *testing.T) {
	models, err := Decode([]byte(workspace))
	require.NoError(t, err)

	e, err := FindEnvironment(models, "dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", e.Name)

	_, err = FindEnvironment(models, "prod")
	assert.ErrorIs(t, err, ErrEnvironmentNotFound)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.yaml")
	require.NoError(t, os.WriteFile(path, []byte(workspace), 0o600))

	models, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, models, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, pkg.ErrReadInput)

	models, err = Load(strings.NewReader(workspace))
	require.NoError(t, err)
	assert.Len(t, models, 3)
}
