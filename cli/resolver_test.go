package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	require.NoError(t, err)

	return val
}

func TestResolveReturnsConfig(t *testing.T) {
	src := `
config:
  log-level: debug
  log_format: text
  jobs: 4
  environment:
    - dev.yaml
    - base.yaml
other:
  foo: bar
`

	r, err := resolve("config")(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "debug", resolveFlag(t, r, "log-level"))
	assert.Equal(t, "text", resolveFlag(t, r, "log-format"))
	assert.Equal(t, "4", resolveFlag(t, r, "jobs"))
	assert.Equal(t, []any{"dev.yaml", "base.yaml"}, resolveFlag(t, r, "environment"))
	assert.Nil(t, resolveFlag(t, r, "foo"))
}

func TestResolveMissingKey(t *testing.T) {
	r, err := resolve("missing")(strings.NewReader("existing:\n  foo: bar\n"))
	require.NoError(t, err)

	assert.Nil(t, resolveFlag(t, r, "foo"))
}

func TestResolveMalformed(t *testing.T) {
	for name, src := range map[string]string{
		"syntax": "config: [unterminated",
		"scalar": "config: 42",
		"empty":  "",
	} {
		t.Run(name, func(t *testing.T) {
			r, err := resolve("config")(strings.NewReader(src))
			require.NoError(t, err)

			assert.Nil(t, resolveFlag(t, r, "log-level"))
		})
	}
}

func TestResolveKong(t *testing.T) {
	var cli struct {
		Level string `default:"info"`
		Jobs  int
		Fast  bool
	}

	src := "config:\n  level: warn\n  jobs: 3\n  fast: true\n"

	r, err := resolve("config")(strings.NewReader(src))
	require.NoError(t, err)

	parser, err := kong.New(&cli, kong.Resolvers(r), kong.Exit(func(int) { t.FailNow() }))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--jobs=5"})
	require.NoError(t, err)

	assert.Equal(t, "warn", cli.Level)
	assert.Equal(t, 5, cli.Jobs)
	assert.True(t, cli.Fast)
}
