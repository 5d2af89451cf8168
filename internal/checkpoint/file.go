package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

type fileStore struct {
	path string
}

func openFile(cfg Config) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("checkpoint path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &fileStore{path: path}, nil
}

func (f *fileStore) Load(_ context.Context) (Checkpoints, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoints{}, nil
		}
		return nil, fmt.Errorf("failed to read checkpoints: %w", err)
	}
	return decode(data)
}

// Save writes a temporary file, syncs it and renames it over the previous one.
func (f *fileStore) Save(_ context.Context, c Checkpoints) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoints: %w", err)
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %w", err)
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write checkpoints: %w", err)
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync checkpoints: %w", err)
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	return os.Rename(tmpFile, f.path)
}

func (f *fileStore) Close() error { return nil }

func decode(data []byte) (Checkpoints, error) {
	c := Checkpoints{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoints: %w", err)
	}
	return c, nil
}
