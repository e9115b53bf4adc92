// Package cli contains the command line interface for yaak-tmpl.
//
// # Usage
//
//	yaak-tmpl -e envs/dev.yaml -e envs/base.yaml '${[ host ]}/users'
//	yaak-tmpl render -e envs/dev.yaml 'requests/**/*.yaml' -o json
//	yaak-tmpl secure encrypt -w wk_1 'hunter2'
//
// Templates are rendered against the environments given with -e. The first
// environment wins when several define a variable.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (see [pkg.ConfigDir]). Flag values live under the "config" key:
//
//	config:
//	  log-level: debug
//	  key-store: memory
//	  environment:
//	    - /home/me/envs/base.yaml
//
// Run "yaak-tmpl init" to write the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: trace, debug, info, warn, error
//   - --log-format: text, json
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, ...)
//   - --log-caller: include caller information
//   - --log-pretty: colorize text output
//
// Logs are written to stderr; rendered output goes to stdout.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o yaak-tmpl .
//
//   - --pprof-mode: profiling mode (see [profile.Modes])
//   - --pprof-dir: profile output directory
package cli
