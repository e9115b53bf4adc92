// Package crypto encrypts and decrypts values with keys scoped to a
// workspace.
//
// Keys are 256-bit XChaCha20-Poly1305 keys held by a [KeyStore]. A
// [Manager] loads each workspace key at most once and caches it for the
// life of the Manager. Ciphertext is the random nonce followed by the
// sealed payload, with the workspace ID bound as additional data, so a
// value encrypted for one workspace cannot be opened by another.
package crypto

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/sync/singleflight"

	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/pkg"
)

var (
	ErrMissingWorkspace = pkg.MakeErrorf("missing workspace id")
	ErrKeyNotFound      = pkg.MakeErrorf("workspace key not found")
	ErrInvalidKey       = pkg.MakeErrorf("invalid workspace key")
	ErrEncrypt          = pkg.MakeErrorf("failed to encrypt")
	ErrDecrypt          = pkg.MakeErrorf("failed to decrypt")
)

// KeySize is the length in bytes of a workspace key.
const KeySize = chacha20poly1305.KeySize

// KeyStore persists workspace keys. LoadKey returns an error matching
// [ErrKeyNotFound] when no key exists for the workspace.
//
// Implementations must be safe for concurrent use.
type KeyStore interface {
	LoadKey(ctx context.Context, workspaceID string) ([]byte, error)
	StoreKey(ctx context.Context, workspaceID string, key []byte) error
}

// Manager encrypts and decrypts on behalf of workspaces. It is safe for
// concurrent use; concurrent first uses of the same workspace share a single
// key load.
type Manager struct {
	store KeyStore
	log   log.Logger
	rand  io.Reader

	mu    sync.RWMutex
	aeads map[string]cipher.AEAD
	group singleflight.Group
}

// Option configures a [Manager].
type Option func(*Manager)

// WithKeyStore sets the store workspace keys are loaded from and saved to.
func WithKeyStore(store KeyStore) Option {
	return func(m *Manager) { m.store = store }
}

// WithLogger sets the logger used for key lifecycle events.
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) { m.log = logger }
}

// WithRandom sets the source of key material and nonces.
func WithRandom(r io.Reader) Option {
	return func(m *Manager) { m.rand = r }
}

// NewManager returns a Manager. Without [WithKeyStore] keys are held in
// memory only.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		log:   log.Default(),
		rand:  rand.Reader,
		aeads: make(map[string]cipher.AEAD),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore()
	}

	return m
}

// Encrypt seals plaintext with the key of workspaceID, generating and
// storing a new key if the workspace has none.
func (m *Manager) Encrypt(
	ctx context.Context,
	workspaceID string,
	plaintext []byte,
) ([]byte, error) {
	aead, err := m.aead(ctx, workspaceID, true)
	if err != nil {
		return nil, err
	}

	size := aead.NonceSize()
	nonce := make([]byte, size, size+len(plaintext)+aead.Overhead())

	if _, err := io.ReadFull(m.rand, nonce); err != nil {
		return nil, ErrEncrypt.Wrap(err)
	}

	return aead.Seal(nonce, nonce, plaintext, []byte(workspaceID)), nil
}

// Decrypt opens data produced by [Manager.Encrypt] for the same workspace.
func (m *Manager) Decrypt(
	ctx context.Context,
	workspaceID string,
	data []byte,
) ([]byte, error) {
	aead, err := m.aead(ctx, workspaceID, false)
	if err != nil {
		return nil, err
	}

	size := aead.NonceSize()
	if len(data) < size+aead.Overhead() {
		return nil, ErrDecrypt.Wrapf("ciphertext too short")
	}

	out, err := aead.Open(nil, data[:size], data[size:], []byte(workspaceID))
	if err != nil {
		return nil, ErrDecrypt.Wrap(err)
	}

	return out, nil
}

// Forget drops the cached key of workspaceID. The stored key is untouched.
func (m *Manager) Forget(workspaceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.aeads, workspaceID)
}

func (m *Manager) cached(workspaceID string) (cipher.AEAD, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	aead, ok := m.aeads[workspaceID]

	return aead, ok
}

func (m *Manager) aead(
	ctx context.Context,
	workspaceID string,
	create bool,
) (cipher.AEAD, error) {
	if workspaceID == "" {
		return nil, ErrMissingWorkspace
	}

	if aead, ok := m.cached(workspaceID); ok {
		return aead, nil
	}

	// Loads and creations are coalesced separately so that a plain load
	// never generates a key.
	group := "load:" + workspaceID
	if create {
		group = "create:" + workspaceID
	}

	v, err, _ := m.group.Do(group, func() (any, error) {
		if aead, ok := m.cached(workspaceID); ok {
			return aead, nil
		}

		key, err := m.loadKey(ctx, workspaceID, create)
		if err != nil {
			return nil, err
		}

		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, ErrInvalidKey.Wrap(err)
		}

		m.mu.Lock()
		m.aeads[workspaceID] = aead
		m.mu.Unlock()

		return aead, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(cipher.AEAD), nil
}

func (m *Manager) loadKey(
	ctx context.Context,
	workspaceID string,
	create bool,
) ([]byte, error) {
	key, err := m.store.LoadKey(ctx, workspaceID)

	switch {
	case err == nil:
		if len(key) != KeySize {
			return nil, ErrInvalidKey.Wrapf("expected %d bytes, got %d", KeySize, len(key))
		}

		return key, nil

	case !create || !errors.Is(err, ErrKeyNotFound):
		return nil, err
	}

	key = make([]byte, KeySize)
	if _, err := io.ReadFull(m.rand, key); err != nil {
		return nil, ErrInvalidKey.Wrap(err)
	}

	if err := m.store.StoreKey(ctx, workspaceID, key); err != nil {
		return nil, err
	}

	m.log.DebugContext(ctx, "generated workspace key",
		slog.String("workspace", workspaceID))

	return key, nil
}
