// Package storage persists encoded containers and batch reports in an
// embedded pebble database, keyed by ksuid. The core codec and pipeline
// packages stay I/O free; this is where the CLI parks its outputs.
package storage

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

const (
	artifactPrefix = "artifact/"
	reportPrefix   = "report/"
)

// ArtifactStore is a pebble-backed blob store for K2SH artifacts.
type ArtifactStore struct {
	db *pebble.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*ArtifactStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening artifact store at %s", path)
	}
	return &ArtifactStore{db: db}, nil
}

// PutArtifact stores encoded container bytes and returns the generated id.
func (s *ArtifactStore) PutArtifact(data []byte) (ksuid.KSUID, error) {
	return s.put(artifactPrefix, data)
}

// GetArtifact returns a copy of the artifact bytes for id.
func (s *ArtifactStore) GetArtifact(id ksuid.KSUID) ([]byte, error) {
	return s.get(artifactPrefix, id)
}

// PutReport stores a serialized batch report and returns the generated id.
func (s *ArtifactStore) PutReport(data []byte) (ksuid.KSUID, error) {
	return s.put(reportPrefix, data)
}

// GetReport returns a copy of the report bytes for id.
func (s *ArtifactStore) GetReport(id ksuid.KSUID) ([]byte, error) {
	return s.get(reportPrefix, id)
}

func (s *ArtifactStore) put(prefix string, data []byte) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := s.db.Set(key(prefix, id), data, pebble.Sync); err != nil {
		return ksuid.Nil, errors.Wrapf(err, "storing %s%s", prefix, id)
	}
	return id, nil
}

func (s *ArtifactStore) get(prefix string, id ksuid.KSUID) ([]byte, error) {
	data, closer, err := s.db.Get(key(prefix, id))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s%s", prefix, id)
	}
	defer closer.Close()

	// data is only valid until the closer is released.
	return append([]byte(nil), data...), nil
}

// Delete removes the artifact for id.
func (s *ArtifactStore) Delete(id ksuid.KSUID) error {
	return s.db.Delete(key(artifactPrefix, id), pebble.Sync)
}

// Close closes the underlying database.
func (s *ArtifactStore) Close() error {
	return s.db.Close()
}

func key(prefix string, id ksuid.KSUID) []byte {
	return append([]byte(prefix), id.Bytes()...)
}
