package crypto

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	for _, plaintext := range []string{"", "s3cr3t", "ünïcødé ✓"} {
		ct, err := m.Encrypt(ctx, "wk_1", []byte(plaintext))
		require.NoError(t, err)

		pt, err := m.Decrypt(ctx, "wk_1", ct)
		require.NoError(t, err)
		assert.Equal(t, plaintext, string(pt))
	}
}

func TestNonceIsRandom(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	a, err := m.Encrypt(ctx, "wk_1", []byte("same"))
	require.NoError(t, err)

	b, err := m.Encrypt(ctx, "wk_1", []byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestWorkspaceIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(WithKeyStore(store))

	ct, err := m.Encrypt(ctx, "wk_a", []byte("value"))
	require.NoError(t, err)

	_, err = m.Encrypt(ctx, "wk_b", []byte("other"))
	require.NoError(t, err)

	_, err = m.Decrypt(ctx, "wk_b", ct)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestKeyPersistsAcrossManagers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ct, err := NewManager(WithKeyStore(store)).Encrypt(ctx, "wk", []byte("v"))
	require.NoError(t, err)

	pt, err := NewManager(WithKeyStore(store)).Decrypt(ctx, "wk", ct)
	require.NoError(t, err)
	assert.Equal(t, "v", string(pt))
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	_, err := m.Encrypt(ctx, "", []byte("x"))
	assert.ErrorIs(t, err, ErrMissingWorkspace)

	_, err = m.Decrypt(ctx, "unknown", []byte("whatever-long-enough-payload-here-0123456789"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	ct, err := m.Encrypt(ctx, "wk", []byte("x"))
	require.NoError(t, err)

	_, err = m.Decrypt(ctx, "wk", ct[:5])
	assert.ErrorIs(t, err, ErrDecrypt)

	ct[len(ct)-1] ^= 0xff
	_, err = m.Decrypt(ctx, "wk", ct)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestInvalidStoredKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.StoreKey(ctx, "wk", []byte("short")))

	_, err := NewManager(WithKeyStore(store)).Encrypt(ctx, "wk", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

// countingStore counts key generations.
type countingStore struct {
	*MemoryStore
	stores atomic.Int32
}

func (s *countingStore) StoreKey(ctx context.Context, id string, key []byte) error {
	s.stores.Add(1)

	return s.MemoryStore.StoreKey(ctx, id, key)
}

func TestConcurrentFirstUseGeneratesOneKey(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: NewMemoryStore()}
	m := NewManager(WithKeyStore(store))

	var wg sync.WaitGroup

	cts := make([][]byte, 32)
	for i := range cts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ct, err := m.Encrypt(ctx, "wk", []byte("v"))
			assert.NoError(t, err)

			cts[i] = ct
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), store.stores.Load())

	for _, ct := range cts {
		pt, err := m.Decrypt(ctx, "wk", ct)
		require.NoError(t, err)
		assert.Equal(t, "v", string(pt))
	}
}

func TestStoreErrorPropagates(t *testing.T) {
	boom := errors.New("store offline")
	m := NewManager(WithKeyStore(failingStore{boom}))

	_, err := m.Encrypt(context.Background(), "wk", []byte("x"))
	assert.ErrorIs(t, err, boom)
}

type failingStore struct{ err error }

func (s failingStore) LoadKey(context.Context, string) ([]byte, error) { return nil, s.err }

func (s failingStore) StoreKey(context.Context, string, []byte) error { return s.err }

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	ctx := context.Background()
	store := KeyringStore{}

	_, err := store.LoadKey(ctx, "wk")
	require.ErrorIs(t, err, ErrKeyNotFound)

	m := NewManager(WithKeyStore(store))

	ct, err := m.Encrypt(ctx, "wk", []byte("in keyring"))
	require.NoError(t, err)

	secret, err := keyring.Get(DefaultKeyringService, "wk")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)

	pt, err := NewManager(WithKeyStore(store)).Decrypt(ctx, "wk", ct)
	require.NoError(t, err)
	assert.Equal(t, "in keyring", string(pt))
}

func TestKeyringStoreBadEncoding(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("svc", "wk", "%%% not base64"))

	_, err := KeyringStore{Service: "svc"}.LoadKey(context.Background(), "wk")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
