package attend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialStore persists the bearer token so a session survives process
// restarts. Implementations must treat an empty token as "no credential".
type CredentialStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// tokenFileName is the single well-known key the credential lives under.
const tokenFileName = "token"

// FileCredentialStore keeps the token in a file under the user's config
// directory with owner-only permissions.
type FileCredentialStore struct {
	path string
}

// NewFileCredentialStore creates a store rooted at dir. If dir is empty, the
// platform config directory is used (e.g. ~/.config/attend-admin).
func NewFileCredentialStore(dir string) (*FileCredentialStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("could not resolve config directory: %w", err)
		}
		dir = filepath.Join(base, "attend-admin")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("could not create credential directory: %w", err)
	}
	return &FileCredentialStore{path: filepath.Join(dir, tokenFileName)}, nil
}

func (s *FileCredentialStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not read credential: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileCredentialStore) Save(token string) error {
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("could not write credential: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not remove credential: %w", err)
	}
	return nil
}

// MemoryCredentialStore holds the token in memory only. Used by the web
// layer, where each browser session carries its own token, and by tests.
type MemoryCredentialStore struct {
	token string
}

func NewMemoryCredentialStore(token string) *MemoryCredentialStore {
	return &MemoryCredentialStore{token: token}
}

func (s *MemoryCredentialStore) Load() (string, error) {
	return s.token, nil
}

func (s *MemoryCredentialStore) Save(token string) error {
	s.token = token
	return nil
}

func (s *MemoryCredentialStore) Clear() error {
	s.token = ""
	return nil
}
