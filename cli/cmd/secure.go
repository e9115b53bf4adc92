package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/subframe7536/yaak/function"
	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/template"
)

// Secure converts templates to and from their encrypted form. Both
// subcommands need --workspace to select the workspace key.
type Secure struct {
	Encrypt SecureEncrypt `cmd:"" help:"Wrap the input in one encrypted secure tag."`
	Decrypt SecureDecrypt `cmd:"" help:"Replace every secure tag with its decrypted text."`
}

type secureSource struct {
	Template string `arg:"" help:"Template text or '-' for stdin (default: source files)" name:"template" optional:""`

	out io.Writer
}

type secureFunc func(context.Context, template.Callback, string) (string, error)

func (s *secureSource) run(ctx context.Context, op string, fn secureFunc) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := input(ctx, s.Template)
	if err != nil {
		return err
	}

	sess, err := newSession(ctx)
	if err != nil {
		return err
	}

	out, err := fn(ctx, sess.callback(), src)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "secure template",
		slog.String("op", op),
		slog.String("workspace", sess.opts.Workspace),
	)

	w := s.out
	if w == nil {
		w = os.Stdout
	}

	_, err = fmt.Fprintln(w, out)

	return err
}

// SecureEncrypt encrypts a template.
type SecureEncrypt struct {
	secureSource
}

// Run executes the secure encrypt command.
func (e *SecureEncrypt) Run(ctx context.Context) error {
	return e.run(ctx, "encrypt", function.EncryptSecureTemplate)
}

// SecureDecrypt decrypts the secure tags of a template.
type SecureDecrypt struct {
	secureSource
}

// Run executes the secure decrypt command.
func (d *SecureDecrypt) Run(ctx context.Context) error {
	return d.run(ctx, "decrypt", function.DecryptSecureTemplate)
}
