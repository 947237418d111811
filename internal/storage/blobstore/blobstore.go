// Package blobstore implements the DocumentStore contract: a
// content-addressed JSON blob per declaration, sharded by directory to bound
// per-directory fan-out, persisted with the same temp-file-then-rename
// write internal/schema's Registry.Save uses for crash safety.
package blobstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtxml/declarations/internal/canonical"
)

var ErrNotFound = errors.New("blobstore: document not found")

// Document is the persisted envelope: the canonical record plus the
// timestamp it was last saved.
type Document struct {
	Record  *canonical.CanonicalRecord `json:"record"`
	SavedAt time.Time                  `json:"saved_at"`
}

// Store is the DocumentStore contract.
type Store interface {
	Save(declarationID string, rec *canonical.CanonicalRecord) error
	Get(declarationID string) (*Document, error)
	Delete(declarationID string) error
}

// FileStore is the filesystem-backed Store implementation.
type FileStore struct {
	rootDir string
}

// NewFileStore creates a FileStore rooted at rootDir, creating it if absent.
func NewFileStore(rootDir string) (*FileStore, error) {
	if err := os.MkdirAll(rootDir, 0o750); err != nil {
		return nil, fmt.Errorf("blobstore: create root dir: %w", err)
	}
	return &FileStore{rootDir: rootDir}, nil
}

// Save writes rec as a JSON blob at a path sharded by the first two
// characters of declarationID, via a temp-file-then-rename write.
func (s *FileStore) Save(declarationID string, rec *canonical.CanonicalRecord) error {
	doc := Document{Record: rec, SavedAt: time.Now()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("blobstore: marshal document: %w", err)
	}

	path := s.pathFor(declarationID)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("blobstore: create shard dir: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("blobstore: write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("blobstore: rename temp file: %w", err)
	}
	return nil
}

// Get reads and unmarshals the blob for declarationID.
func (s *FileStore) Get(declarationID string) (*Document, error) {
	data, err := os.ReadFile(s.pathFor(declarationID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blobstore: read document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("blobstore: unmarshal document: %w", err)
	}
	return &doc, nil
}

// Delete removes the blob for declarationID. Deleting a non-existent blob is
// not an error.
func (s *FileStore) Delete(declarationID string) error {
	err := os.Remove(s.pathFor(declarationID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blobstore: delete document: %w", err)
	}
	return nil
}

// pathFor returns the sharded path for a declaration ID: the first two
// characters become a subdirectory, bounding per-directory fan-out.
func (s *FileStore) pathFor(declarationID string) string {
	shard := declarationID
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return filepath.Join(s.rootDir, shard, declarationID+".json")
}
