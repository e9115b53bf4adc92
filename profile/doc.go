// Package profile provides optional runtime profiling for yaak-tmpl.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o yaak-tmpl .
//
// Without the tag, [Profiler.Start] is a no-op and [Modes] is empty.
//
// Profiles are written to [Profiler.Path] with names matching the mode
// (cpu.pprof, mem.pprof) and can be inspected with
//
//	go tool pprof -http=: /path/to/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
