package function

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subframe7536/yaak/crypto"
	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/template"
)

func secureRegistry(t *testing.T, c Cipher) *Registry {
	t.Helper()

	return newTestRegistry(t, NewSecure(c))
}

func TestSecureRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSecure(crypto.NewManager(crypto.WithLogger(log.Discard())))
	w := Window{WorkspaceID: "wk_1"}

	ct, err := s.TransformArg(ctx, w, "value", "hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, SecurePrefix))

	again, err := s.TransformArg(ctx, w, "value", ct)
	require.NoError(t, err)
	assert.Equal(t, ct, again, "already encrypted values are left alone")

	pt, err := s.Run(ctx, Call{Window: w, Args: map[string]string{"value": ct}})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pt)
}

func TestSecureTransformArg(t *testing.T) {
	ctx := context.Background()
	s := NewSecure(crypto.NewManager())

	out, err := s.TransformArg(ctx, Window{}, "other", "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	_, err = s.TransformArg(ctx, Window{}, "value", "plain")
	assert.ErrorIs(t, err, template.ErrMissingContext)

	out, err = s.TransformArg(ctx, Window{WorkspaceID: "wk"}, "value", "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSecureRunErrors(t *testing.T) {
	ctx := context.Background()
	s := NewSecure(crypto.NewManager())
	w := Window{WorkspaceID: "wk"}

	_, err := s.Run(ctx, Call{Args: map[string]string{"value": "YENC_x"}})
	assert.ErrorIs(t, err, template.ErrMissingContext)

	_, err = s.Run(ctx, Call{Window: w, Args: map[string]string{"value": "plain"}})
	assert.ErrorIs(t, err, ErrNotEncrypted)

	_, err = s.Run(ctx, Call{Window: w, Args: map[string]string{"value": "YENC_!!!"}})
	assert.ErrorIs(t, err, template.ErrFunctionFailed)

	out, err := s.Run(ctx, Call{Window: w, Args: map[string]string{"value": ""}})
	require.NoError(t, err)
	assert.Empty(t, out)
}

// rawCipher returns its input, so tests can control decrypted bytes.
type rawCipher struct{}

func (rawCipher) Encrypt(_ context.Context, _ string, p []byte) ([]byte, error) { return p, nil }

func (rawCipher) Decrypt(_ context.Context, _ string, d []byte) ([]byte, error) { return d, nil }

func TestSecureInvalidUTF8(t *testing.T) {
	value := SecurePrefix + base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe})

	_, err := NewSecure(rawCipher{}).Run(context.Background(), Call{
		Window: Window{WorkspaceID: "wk"},
		Args:   map[string]string{"value": value},
	})
	assert.ErrorIs(t, err, template.ErrInvalidUTF8)
}

func TestSecureTransformThenRender(t *testing.T) {
	ctx := context.Background()
	r := secureRegistry(t, crypto.NewManager())
	cb := r.Bind(Window{WorkspaceID: "wk"})

	stored, err := template.Transform(ctx, `Bearer ${[ secure(value: "tok") ]}`, cb)
	require.NoError(t, err)
	assert.NotContains(t, stored, `"tok"`)
	assert.Contains(t, stored, SecurePrefix)

	out, err := template.ParseAndRender(ctx, stored, nil, cb, template.RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", out)
}

func TestSecureTemplateHelpers(t *testing.T) {
	ctx := context.Background()
	r := secureRegistry(t, crypto.NewManager())
	cb := r.Bind(Window{WorkspaceID: "wk"})

	encrypted, err := EncryptSecureTemplate(ctx, cb, "user:${[ user ]}")
	require.NoError(t, err)

	tokens, err := template.Parse(encrypted)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, SecureName, tokens[0].Value.Name)

	decrypted, err := DecryptSecureTemplate(ctx, cb, encrypted)
	require.NoError(t, err)
	assert.Equal(t, "user:${[ user ]}", decrypted)

	// Encrypting already encrypted content does not nest secure tags.
	twice, err := EncryptSecureTemplate(ctx, cb, encrypted)
	require.NoError(t, err)

	decrypted, err = DecryptSecureTemplate(ctx, cb, twice)
	require.NoError(t, err)
	assert.Equal(t, "user:${[ user ]}", decrypted)
}

func TestDecryptSecureTemplateKeepsOtherTags(t *testing.T) {
	ctx := context.Background()
	cb := secureRegistry(t, crypto.NewManager()).Bind(Window{WorkspaceID: "wk"})

	out, err := DecryptSecureTemplate(ctx, cb, `a ${[ b ]} ${[secure(value: "")]}`)
	require.NoError(t, err)
	assert.Equal(t, "a ${[ b ]} ", out)
}
