package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/subframe7536/yaak/cli/cmd"
	"github.com/subframe7536/yaak/pkg"
)

// CLI is the top-level command-line interface for yaak-tmpl.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit"`

	Source      []string `help:"Input source file(s) or '-' for stdin"            name:"source"      short:"s" type:"existingfile"`
	Environment []string `help:"Environment file(s), most specific first"         name:"environment" short:"e" type:"existingfile"`
	Workspace   string   `help:"Workspace ID used by workspace-scoped functions"                     short:"w"`
	KeyStore    string   `default:"keyring" enum:"keyring,memory" help:"Where workspace keys are kept (${enum})"`
	Purpose     string   `default:"send"    enum:"send,preview"   help:"Render purpose passed to functions (${enum})"`
	Interactive bool     `help:"Prompt on the terminal for prompt.text"`

	Init      cmd.Init      `cmd:"" help:"Initialize configuration file"`
	Render    cmd.Render    `cmd:"" help:"Render request files"`
	Watch     cmd.Watch     `cmd:"" help:"Render request files again whenever they change"`
	Parse     cmd.Parse     `cmd:"" help:"Print the parsed form of a template"`
	Fmt       cmd.Fmt       `cmd:"" help:"Format an XML body that may contain template tags"`
	Escape    cmd.Escape    `cmd:"" help:"Escape template tags so they render literally"`
	Unescape  cmd.Unescape  `cmd:"" help:"Remove one level of template tag escaping"`
	Secure    cmd.Secure    `cmd:"" help:"Encrypt or decrypt secure template tags"`
	Functions cmd.Functions `cmd:"" help:"List template functions"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Render a template"`
}

func (c *CLI) options() cmd.Options {
	return cmd.Options{
		Workspace:    c.Workspace,
		Environments: c.Environment,
		KeyStore:     c.KeyStore,
		Purpose:      c.Purpose,
		Interactive:  c.Interactive,
	}
}

// Run executes the yaak-tmpl CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + configExt)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            strings.TrimSpace(pkg.Version),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// already logged in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSourceFiles(ctx, cli.Source)
	ctx = cmd.WithOptions(ctx, cli.options())

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
