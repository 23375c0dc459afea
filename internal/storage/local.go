package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactStore persists synthesized templates on the local filesystem,
// one file per target under a base directory.
type ArtifactStore struct {
	basePath string
}

func NewArtifactStore(basePath string) *ArtifactStore {
	return &ArtifactStore{basePath: basePath}
}

// Save writes a template artifact for a target. The write goes through a
// temp file and a rename so a crashed run never leaves a partial artifact.
func (s *ArtifactStore) Save(target string, data []byte) (string, error) {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(s.basePath, target+".json")
	tmp, err := os.CreateTemp(s.basePath, target+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return path, nil
}

// Open reads a previously saved artifact.
func (s *ArtifactStore) Open(target string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, target+".json"))
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return data, nil
}

// Remove deletes an artifact. Missing artifacts are not an error.
func (s *ArtifactStore) Remove(target string) error {
	path := filepath.Join(s.basePath, target+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}
