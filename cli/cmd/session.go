package cmd

import (
	"context"
	"log/slog"

	"github.com/subframe7536/yaak/cli/prompt"
	"github.com/subframe7536/yaak/crypto"
	"github.com/subframe7536/yaak/function"
	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/model"
	"github.com/subframe7536/yaak/template"
)

// Key store names accepted by --key-store.
const (
	KeyStoreKeyring = "keyring"
	KeyStoreMemory  = "memory"
)

// session is everything a rendering command needs.
type session struct {
	opts     Options
	chain    []model.Environment
	registry *function.Registry
}

func newSession(ctx context.Context) (*session, error) {
	opts := optionsFrom(ctx)

	chain, err := loadChain(opts.Environments)
	if err != nil {
		return nil, err
	}

	store, err := keyStore(opts.KeyStore)
	if err != nil {
		return nil, err
	}

	var prompter function.Prompter
	if opts.Interactive {
		prompter = prompt.New()
	}

	logger := log.Default()
	manager := crypto.NewManager(crypto.WithKeyStore(store), crypto.WithLogger(logger))

	registry, err := function.NewRegistry(
		function.Builtins(manager, prompter, logger),
		function.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "session ready",
		slog.String("workspace", opts.Workspace),
		slog.Int("environments", len(chain)),
		slog.String("key_store", opts.KeyStore),
	)

	return &session{opts: opts, chain: chain, registry: registry}, nil
}

func keyStore(name string) (crypto.KeyStore, error) {
	switch name {
	case "", KeyStoreKeyring:
		return crypto.KeyringStore{}, nil
	case KeyStoreMemory:
		return crypto.NewMemoryStore(), nil
	default:
		return nil, ErrKeyStore.Wrapf("%q", name)
	}
}

// loadChain loads the environments of each file in order. The first
// environment is the most specific.
func loadChain(files []string) ([]model.Environment, error) {
	var chain []model.Environment

	for _, f := range files {
		models, err := model.LoadFile(f)
		if err != nil {
			return nil, err
		}

		chain = append(chain, model.Environments(models)...)
	}

	return chain, nil
}

func (s *session) window() function.Window {
	w := function.Window{
		Label:       "cli",
		WorkspaceID: s.opts.Workspace,
		Purpose:     function.ParsePurpose(s.opts.Purpose),
	}

	if len(s.chain) > 0 {
		w.EnvironmentID = s.chain[0].ID
	}

	return w
}

func (s *session) callback() template.Callback {
	return s.registry.Bind(s.window())
}

// with returns the session chain followed by local, the environments
// defined next to a request. Environments given on the command line take
// precedence over local ones.
func (s *session) with(local []model.Environment) []model.Environment {
	if len(local) == 0 {
		return s.chain
	}

	return append(append([]model.Environment(nil), s.chain...), local...)
}

func renderOptions(silent bool) template.RenderOptions {
	if silent {
		return template.RenderOptions{ErrorBehavior: template.Silent}
	}

	return template.RenderOptions{ErrorBehavior: template.Throw}
}
