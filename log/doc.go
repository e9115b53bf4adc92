// Package log provides a concurrency-safe leveled logger built on
// [log/slog].
//
// A [Logger] is configured once with functional options and may be
// re-derived with [Logger.Wrap]. The zero value discards every record, so
// library types can embed a Logger without forcing callers to set one.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//	logger.Info("rendered", slog.Int("tokens", n))
//
// Context-unaware methods use [DefaultContextProvider].
//
// # Output
//
// [FormatText] (default) and [FormatJSON] are supported. With
// [WithPretty] enabled, output is colorized when the writer is a terminal.
//
// The package-level functions ([Info], [WarnContext], ...) log through the
// logger returned by [Default], which [Config] reconfigures.
package log
