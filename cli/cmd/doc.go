// Package cmd implements the yaak-tmpl subcommands.
//
// Every command reads the global [Options] from its context. Commands that
// render build a session from them: the environment chain loaded from the
// environment files, a workspace key manager, and a function registry bound
// to a window for the workspace.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
