package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] for YAML config files. Flag
// values are read from the mapping under key:
//
//	config:
//	  log-level: debug
//	  key-store: memory
//	  environment:
//	    - envs/dev.yaml
//
// Flag names may use underscores in place of hyphens (log_level). Command
// line flags override config file values. A file that cannot be parsed, or
// that has no mapping under key, configures nothing.
func resolve(key string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return config{}, nil
		}

		values, ok := doc[key].(map[string]any)
		if !ok {
			return config{}, nil
		}

		out := make(config, len(values))
		for name, v := range values {
			out[name] = flagValue(v)
		}

		return out, nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagValue converts a decoded YAML value to a form kong's mappers accept.
// Numbers are passed as strings.
func flagValue(v any) any {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}
