package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/pkg/logger"
	"crypto_dashboard/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errCorruptFile marks a store file that exists but is not a JSON object of strings.
var errCorruptFile = errors.New("corrupt store file")

// FileStore keeps all keys in a single JSON object file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by path. The file is created on first Set.
func NewFileStore(path string) port.KeyValueStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]string, error) {
	data, ok, err := utils.ReadFileIfExists(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read store file %s: %w", s.path, err)
	}
	values := make(map[string]string)
	if !ok || len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errCorruptFile, s.path, err)
	}
	return values, nil
}

// Get implements port.KeyValueStore.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set implements port.KeyValueStore.
func (s *FileStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if errors.Is(err, errCorruptFile) {
		values, err = s.quarantine(err)
	}
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file %s: %w", s.path, err)
	}
	return utils.WriteFileAtomic(s.path, data, 0o600)
}

// quarantine moves a corrupt store file to <path>.corrupt so the next write starts from an empty object.
func (s *FileStore) quarantine(cause error) (map[string]string, error) {
	aside := s.path + ".corrupt"
	logger.Warn("Discarding unreadable store file", "path", s.path, "movedTo", aside, "error", cause)
	if err := os.Rename(s.path, aside); err != nil {
		return nil, fmt.Errorf("failed to move corrupt store file %s: %w", s.path, err)
	}
	return make(map[string]string), nil
}
