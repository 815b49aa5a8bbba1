package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// Ensure ManifestStore implements looptomd.ManifestStore at compile time.
var _ looptomd.ManifestStore = (*ManifestStore)(nil)

// ManifestStore persists manifests as JSON files with atomic replacement.
type ManifestStore struct {
	path string
}

// NewManifestStore creates a ManifestStore writing to path.
func NewManifestStore(path string) *ManifestStore {
	return &ManifestStore{path: path}
}

// WriteManifest atomically replaces the stored manifest. The manifest is
// written to a temp file in the same directory and renamed into place, so a
// crash mid-write never leaves a truncated manifest.
func (s *ManifestStore) WriteManifest(ctx context.Context, m *looptomd.Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return looptomd.Errorf(looptomd.EINTERNAL, "encoding manifest: %v", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// ReadManifest loads the stored manifest.
func (s *ManifestStore) ReadManifest(ctx context.Context) (*looptomd.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, looptomd.Errorf(looptomd.ENOTFOUND, "no manifest at %s; run discover first", s.path)
		}
		return nil, err
	}

	var m looptomd.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, looptomd.Errorf(looptomd.EINVALID, "decoding manifest: %v", err)
	}
	return &m, nil
}
