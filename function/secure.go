package function

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/subframe7536/yaak/template"
)

// SecurePrefix marks an argument value as ciphertext.
const SecurePrefix = "YENC_"

// SecureName is the name of the secure-store function.
const SecureName = "secure"

var (
	ErrNotEncrypted = template.NewError("could not decrypt non-encrypted value")
	errNoWorkspace  = errors.New("workspace id missing from window context")
)

// Cipher encrypts and decrypts with a per-workspace key.
type Cipher interface {
	Encrypt(ctx context.Context, workspaceID string, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, workspaceID string, data []byte) ([]byte, error)
}

// Secure stores a value encrypted against the workspace key.
//
// The stored literal is the ciphertext: [Secure.TransformArg] encrypts a
// plaintext "value" argument before it is saved, and [Secure.Run] decrypts
// it at render time.
type Secure struct {
	Cipher Cipher
}

// NewSecure returns the secure function backed by c.
func NewSecure(c Cipher) Secure { return Secure{Cipher: c} }

func (Secure) Descriptor() template.FunctionDescriptor {
	return template.FunctionDescriptor{
		Name:        SecureName,
		Description: "Securely store encrypted text",
		Args: []template.ArgDescriptor{{
			Name:      "value",
			Label:     "Value",
			MultiLine: true,
			Password:  true,
		}},
	}
}

func (s Secure) Run(ctx context.Context, call Call) (string, error) {
	wid := call.Window.WorkspaceID
	if wid == "" {
		return "", template.ErrMissingContext.Wrap(errNoWorkspace)
	}

	value := call.Arg("value")
	if value == "" {
		return "", nil
	}

	payload, ok := strings.CutPrefix(value, SecurePrefix)
	if !ok {
		return "", ErrNotEncrypted
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", template.ErrFunctionFailed.Wrap(err)
	}

	plain, err := s.Cipher.Decrypt(ctx, wid, data)
	if err != nil {
		return "", template.ErrFunctionFailed.Wrap(err)
	}

	if !utf8.Valid(plain) {
		return "", template.ErrInvalidUTF8
	}

	return string(plain), nil
}

// TransformArg encrypts a plaintext "value" argument. Values that already
// carry [SecurePrefix] are returned unchanged, so transforming twice does
// not encrypt twice.
func (s Secure) TransformArg(ctx context.Context, w Window, arg, value string) (string, error) {
	if arg != "value" {
		return value, nil
	}

	if w.WorkspaceID == "" {
		return "", template.ErrMissingContext.Wrap(errNoWorkspace)
	}

	if value == "" || strings.HasPrefix(value, SecurePrefix) {
		return value, nil
	}

	data, err := s.Cipher.Encrypt(ctx, w.WorkspaceID, []byte(value))
	if err != nil {
		return "", template.ErrFunctionFailed.Wrap(err)
	}

	return SecurePrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecryptSecureTemplate replaces every secure tag of source with its
// decrypted text, inserted verbatim so that decrypted tags become live
// again. Only literal arguments are passed to the function; other tokens
// are kept as written.
func DecryptSecureTemplate(ctx context.Context, cb template.Callback, source string) (string, error) {
	tokens, err := template.Parse(source)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	for _, t := range tokens {
		if t.Kind != template.KindTag ||
			t.Value.Kind != template.ValueFn || t.Value.Name != SecureName {
			sb.WriteString(t.String())

			continue
		}

		args := make(map[string]string, len(t.Value.Args))
		for _, a := range t.Value.Args {
			if a.Value.Kind == template.ValueStr {
				args[a.Name] = a.Value.Text
			}
		}

		text, err := cb.Run(ctx, SecureName, args)
		if err != nil {
			return "", err
		}

		sb.WriteString(text)
	}

	return sb.String(), nil
}

// EncryptSecureTemplate decrypts any secure tags in source, then wraps the
// whole result in a single secure tag whose value is encrypted through the
// callback's argument transform.
func EncryptSecureTemplate(ctx context.Context, cb template.Callback, source string) (string, error) {
	plain, err := DecryptSecureTemplate(ctx, cb, source)
	if err != nil {
		return "", err
	}

	tokens := template.Tokens{
		template.Tag(template.Fn(SecureName,
			template.Arg("value", template.Str(plain)))),
	}

	tokens, err = template.TransformArgs(ctx, tokens, cb)
	if err != nil {
		return "", err
	}

	return tokens.String(), nil
}
