package crypto

import (
	"context"
	"encoding/base64"
	"errors"
	"slices"
	"sync"

	"github.com/zalando/go-keyring"
)

// MemoryStore keeps keys in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string][]byte)}
}

func (s *MemoryStore) LoadKey(_ context.Context, workspaceID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[workspaceID]
	if !ok {
		return nil, ErrKeyNotFound.Wrapf("workspace %q", workspaceID)
	}

	return slices.Clone(key), nil
}

func (s *MemoryStore) StoreKey(_ context.Context, workspaceID string, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[workspaceID] = slices.Clone(key)

	return nil
}

// DefaultKeyringService is the OS credential store service under which
// [KeyringStore] saves keys.
const DefaultKeyringService = "yaak-tmpl.workspace-key"

// KeyringStore keeps keys in the OS credential store, base64-encoded, with
// the workspace ID as the account name.
type KeyringStore struct {
	Service string
}

func (s KeyringStore) service() string {
	if s.Service == "" {
		return DefaultKeyringService
	}

	return s.Service
}

func (s KeyringStore) LoadKey(_ context.Context, workspaceID string) ([]byte, error) {
	secret, err := keyring.Get(s.service(), workspaceID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrKeyNotFound.Wrapf("workspace %q", workspaceID)
	}

	if err != nil {
		return nil, err
	}

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, ErrInvalidKey.Wrap(err)
	}

	return key, nil
}

func (s KeyringStore) StoreKey(_ context.Context, workspaceID string, key []byte) error {
	return keyring.Set(s.service(), workspaceID,
		base64.StdEncoding.EncodeToString(key))
}
