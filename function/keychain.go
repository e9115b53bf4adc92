package function

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zalando/go-keyring"

	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/template"
)

// Keychain reads a password from the OS credential store.
//
// A missing entry or an incomplete service/account pair renders as the
// empty string; any other store failure is an error.
type Keychain struct {
	Log log.Logger
}

func (Keychain) Descriptor() template.FunctionDescriptor {
	return template.FunctionDescriptor{
		Name:        "keychain",
		Description: "Get a password from the OS keychain or keyring",
		Aliases:     []string{"keyring"},
		Args: []template.ArgDescriptor{
			{
				Name:        "service",
				Label:       "Service",
				Description: "App or URL for the password",
			},
			{
				Name:        "account",
				Label:       "Account",
				Description: "Username or email address",
			},
		},
	}
}

func (k Keychain) Run(ctx context.Context, call Call) (string, error) {
	service, account := call.Arg("service"), call.Arg("account")

	if service == "" || account == "" {
		k.Log.DebugContext(ctx, "incomplete keychain entry",
			slog.String("service", service),
			slog.String("account", account))

		return "", nil
	}

	secret, err := keyring.Get(service, account)

	switch {
	case errors.Is(err, keyring.ErrNotFound):
		k.Log.InfoContext(ctx, "no password found",
			slog.String("service", service),
			slog.String("account", account))

		return "", nil

	case err != nil:
		return "", template.ErrFunctionFailed.Wrap(err)
	}

	return secret, nil
}
