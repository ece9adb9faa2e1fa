// Package store implements the versioned artifact store on bbolt.
//
// Every mutation appends inside a single bbolt transaction: a new row
// revision, its embedding vectors, a version manifest, and the HEAD
// bump all commit together or not at all. Prior revisions are never
// rewritten, which is what makes reads at historical versions possible.
// Live rows are mirrored in memory with their vectors so search never
// touches disk.
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"axiom/internal/domain"
)

var (
	metaBucket    = []byte("meta")
	logBucket     = []byte("log")
	rowsBucket    = []byte("rows")
	vectorsBucket = []byte("vectors")

	headKey = []byte("head")
)

// Store is a versioned artifact store backed by a single bbolt file.
// Mutations are serialized; reads may run concurrently with each other.
// mu guards head, the live map, and the db handle itself, which Vacuum
// swaps for a rewritten file.
type Store struct {
	db   *bolt.DB
	path string

	mu   sync.RWMutex
	head uint64
	live map[string]*domain.Artifact
}

// Open opens or creates the store file, verifies the version log is
// intact, and loads live rows into memory. A broken log is reported as
// a CorruptionError and never repaired silently.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}

	s := &Store{db: db, path: path, live: make(map[string]*domain.Artifact)}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{metaBucket, logBucket, rowsBucket, vectorsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, &domain.StorageError{Op: "open", Err: err}
	}

	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// load verifies the manifest chain against HEAD and rebuilds the live
// row cache. Gaps in the middle of the log are legal (compaction prunes
// manifests), but HEAD must resolve to a manifest and nothing may claim
// a version past it.
func (s *Store) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		log := tx.Bucket(logBucket)
		rows := tx.Bucket(rowsBucket)
		vectors := tx.Bucket(vectorsBucket)

		s.head = readHead(meta)
		if s.head > 0 {
			if log.Get(versionKey(s.head)) == nil {
				return &domain.CorruptionError{Detail: fmt.Sprintf("manifest for head version %d missing", s.head)}
			}
			if k, _ := log.Cursor().Last(); k != nil {
				last, err := parseVersionKey(k)
				if err != nil {
					return &domain.CorruptionError{Detail: err.Error()}
				}
				if last != s.head {
					return &domain.CorruptionError{Detail: fmt.Sprintf("log ends at version %d but head is %d", last, s.head)}
				}
			}
		}

		latest := make(map[string]*rowRecord)
		err := rows.ForEach(func(k, v []byte) error {
			id, version, err := parseRowKey(k)
			if err != nil {
				return &domain.CorruptionError{Detail: err.Error()}
			}
			if version > s.head {
				return &domain.CorruptionError{Detail: fmt.Sprintf("row %s has version %d past head %d", id, version, s.head)}
			}
			rec, err := decodeRow(v)
			if err != nil {
				return &domain.CorruptionError{Detail: fmt.Sprintf("row %s@%d: %v", id, version, err)}
			}
			if prev, ok := latest[id]; !ok || rec.Version > prev.Version {
				latest[id] = rec
			}
			return nil
		})
		if err != nil {
			return err
		}

		for id, rec := range latest {
			if rec.Deleted {
				continue
			}
			a := rec.artifact()
			key := rowKey(id, rec.Version)
			if blob := vectors.Get(append(key, vectorContentSuffix...)); blob != nil {
				vec, err := decodeVector(blob)
				if err != nil {
					return &domain.CorruptionError{Detail: fmt.Sprintf("content vector %s@%d: %v", id, rec.Version, err)}
				}
				a.ContentEmbedding = vec
			}
			if blob := vectors.Get(append(key, vectorContextSuffix...)); blob != nil {
				vec, err := decodeVector(blob)
				if err != nil {
					return &domain.CorruptionError{Detail: fmt.Sprintf("context vector %s@%d: %v", id, rec.Version, err)}
				}
				a.ContextEmbedding = vec
			}
			s.live[id] = a
		}
		return nil
	})
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the store file path.
func (s *Store) Path() string { return s.path }

// Head returns the current version number; zero for an empty store.
func (s *Store) Head() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.head
}

// Insert appends a new artifact and returns the version it created.
func (s *Store) Insert(a *domain.Artifact) (uint64, error) {
	return s.append(a, domain.OpInsert)
}

// Update appends a new revision of an existing artifact.
func (s *Store) Update(a *domain.Artifact) (uint64, error) {
	s.mu.RLock()
	_, ok := s.live[a.ID]
	s.mu.RUnlock()
	if !ok {
		return 0, &domain.NotFoundError{Resource: "artifact", Key: a.ID}
	}
	return s.append(a, domain.OpUpdate)
}

func (s *Store) append(a *domain.Artifact, op string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.head + 1
	rec := &rowRecord{
		ID:             a.ID,
		Version:        version,
		Kind:           a.Kind,
		Name:           a.Name,
		Content:        a.Content,
		Context:        a.Context,
		Format:         a.Format,
		Metadata:       a.Metadata,
		EmbeddingModel: a.EmbeddingModel,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := writeManifest(tx, &manifest{
			Version:   version,
			Timestamp: time.Now().UTC(),
			Op:        op,
			IDs:       []string{a.ID},
		}); err != nil {
			return err
		}
		data, err := encodeRow(rec)
		if err != nil {
			return err
		}
		key := rowKey(a.ID, version)
		if err := tx.Bucket(rowsBucket).Put(key, data); err != nil {
			return err
		}
		vectors := tx.Bucket(vectorsBucket)
		if len(a.ContentEmbedding) > 0 {
			if err := vectors.Put(append(key, vectorContentSuffix...), encodeVector(a.ContentEmbedding)); err != nil {
				return err
			}
		}
		if len(a.ContextEmbedding) > 0 {
			if err := vectors.Put(append(key, vectorContextSuffix...), encodeVector(a.ContextEmbedding)); err != nil {
				return err
			}
		}
		return tx.Bucket(metaBucket).Put(headKey, versionKey(version))
	})
	if err != nil {
		return 0, &domain.StorageError{Op: op, Err: err}
	}

	s.head = version
	s.live[a.ID] = cloneArtifact(a)
	return version, nil
}

// Delete appends a tombstone for an artifact. The tombstone carries no
// content, so compaction can reclaim the text of removed artifacts.
func (s *Store) Delete(id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.live[id]
	if !ok {
		return 0, &domain.NotFoundError{Resource: "artifact", Key: id}
	}

	version := s.head + 1
	rec := &rowRecord{
		ID:        id,
		Version:   version,
		Kind:      prev.Kind,
		CreatedAt: prev.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Deleted:   true,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := writeManifest(tx, &manifest{
			Version:   version,
			Timestamp: time.Now().UTC(),
			Op:        domain.OpRemove,
			IDs:       []string{id},
		}); err != nil {
			return err
		}
		data, err := encodeRow(rec)
		if err != nil {
			return err
		}
		if err := tx.Bucket(rowsBucket).Put(rowKey(id, version), data); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put(headKey, versionKey(version))
	})
	if err != nil {
		return 0, &domain.StorageError{Op: "remove", Err: err}
	}

	s.head = version
	delete(s.live, id)
	return version, nil
}

// Get returns the live revision of an artifact.
func (s *Store) Get(id string) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.live[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "artifact", Key: id}
	}
	return cloneArtifact(a), nil
}

// GetAt returns the artifact as it was at the given store version: the
// greatest surviving revision at or below it. A tombstone at that point,
// or a version outside the log, is a not-found error.
func (s *Store) GetAt(id string, version uint64) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if version == 0 || version > s.head {
		return nil, &domain.NotFoundError{Resource: "version", Key: fmt.Sprintf("%d", version)}
	}

	var a *domain.Artifact
	err := s.db.View(func(tx *bolt.Tx) error {
		rec, err := revisionAt(tx.Bucket(rowsBucket), id, version)
		if err != nil {
			return err
		}
		a = rec.artifact()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// revisionAt finds the greatest revision of id with version <= v.
func revisionAt(rows *bolt.Bucket, id string, v uint64) (*rowRecord, error) {
	c := rows.Cursor()
	prefix := rowPrefix(id)
	target := rowKey(id, v)

	k, data := c.Seek(target)
	if k == nil || !bytes.Equal(k, target) {
		k, data = c.Prev()
	}
	if k == nil || !bytes.HasPrefix(k, prefix) {
		return nil, &domain.NotFoundError{Resource: "artifact", Key: id}
	}
	rec, err := decodeRow(data)
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	if rec.Deleted {
		return nil, &domain.NotFoundError{Resource: "artifact", Key: id}
	}
	return rec, nil
}

// List returns live artifacts matching the filter, in creation order.
func (s *Store) List(filter domain.ListFilter) ([]*domain.Artifact, error) {
	s.mu.RLock()
	matched := make([]*domain.Artifact, 0, len(s.live))
	for _, a := range s.live {
		if filter.Match(a) {
			matched = append(matched, cloneArtifact(a))
		}
	}
	s.mu.RUnlock()

	sortByCreation(matched)
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// ListAt returns artifacts as they were at a historical version.
func (s *Store) ListAt(version uint64, filter domain.ListFilter) ([]*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if version == 0 || version > s.head {
		return nil, &domain.NotFoundError{Resource: "version", Key: fmt.Sprintf("%d", version)}
	}

	latest := make(map[string]*rowRecord)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(rowsBucket).ForEach(func(k, v []byte) error {
			id, rv, err := parseRowKey(k)
			if err != nil {
				return &domain.StorageError{Op: "list", Err: err}
			}
			if rv > version {
				return nil
			}
			rec, err := decodeRow(v)
			if err != nil {
				return &domain.StorageError{Op: "list", Err: err}
			}
			if prev, ok := latest[id]; !ok || rec.Version > prev.Version {
				latest[id] = rec
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Artifact, 0, len(latest))
	for _, rec := range latest {
		if rec.Deleted {
			continue
		}
		a := rec.artifact()
		if filter.Match(a) {
			matched = append(matched, a)
		}
	}
	sortByCreation(matched)
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Versions returns the surviving version manifests, newest first.
func (s *Store) Versions(limit int) ([]domain.VersionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.VersionInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(logBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			m, err := decodeManifest(v)
			if err != nil {
				return &domain.StorageError{Op: "versions", Err: err}
			}
			out = append(out, domain.VersionInfo{
				Version: m.Version, Timestamp: m.Timestamp, Op: m.Op, IDs: m.IDs,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// History returns the surviving revisions of one artifact, newest first.
func (s *Store) History(id string, limit int) ([]domain.VersionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.VersionInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		log := tx.Bucket(logBucket)
		c := tx.Bucket(rowsBucket).Cursor()
		prefix := rowPrefix(id)

		// Position after the last revision of this id, then walk back.
		k, v := c.Seek(append(rowPrefix(id), 0xff))
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			rec, err := decodeRow(v)
			if err != nil {
				return &domain.StorageError{Op: "history", Err: err}
			}
			info := domain.VersionInfo{Version: rec.Version, Timestamp: rec.UpdatedAt}
			switch {
			case rec.Deleted:
				info.Op = domain.OpRemove
			default:
				info.Op = domain.OpUpdate
			}
			if data := log.Get(versionKey(rec.Version)); data != nil {
				if m, err := decodeManifest(data); err == nil {
					info.Timestamp = m.Timestamp
					info.Op = m.Op
				}
			}
			out = append(out, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &domain.NotFoundError{Resource: "artifact", Key: id}
	}
	return out, nil
}

// Snapshot returns the live rows with their vectors for in-memory
// ranking. Callers must not mutate the returned artifacts.
func (s *Store) Snapshot() []*domain.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Artifact, 0, len(s.live))
	for _, a := range s.live {
		out = append(out, a)
	}
	return out
}

// CountKind returns how many live artifacts use a kind.
func (s *Store) CountKind(kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.live {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// CountLabel returns how many live artifacts carry a label key.
func (s *Store) CountLabel(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.live {
		if _, ok := a.Metadata[key]; ok {
			n++
		}
	}
	return n
}

// Stale returns the live artifacts whose vectors do not match the
// active model: embedded under a different model name or missing a
// vector entirely. Staleness keys on the recorded model name rather
// than vector dimensionality; a remote provider's dimensionality is
// unknown until its first embedding arrives, so a dims comparison
// would flag freshly reindexed rows forever.
func (s *Store) Stale(model string) []*domain.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Artifact
	for _, a := range s.live {
		if a.EmbeddingModel != model ||
			len(a.ContentEmbedding) == 0 ||
			(a.Context != "" && len(a.ContextEmbedding) == 0) {
			out = append(out, cloneArtifact(a))
		}
	}
	sortByCreation(out)
	return out
}

// Stats describes the physical state of the store.
type Stats struct {
	Artifacts int            `json:"artifacts"`
	Head      uint64         `json:"head"`
	Revisions int            `json:"revisions"`
	Manifests int            `json:"manifests"`
	FileSize  int64          `json:"file_size"`
	Kinds     map[string]int `json:"kinds"`
	Models    map[string]int `json:"models"`
}

// Stats reports artifact, revision, and manifest counts plus file size.
func (s *Store) Stats() (*Stats, error) {
	st := &Stats{Kinds: make(map[string]int), Models: make(map[string]int)}

	s.mu.RLock()
	defer s.mu.RUnlock()
	st.Head = s.head
	st.Artifacts = len(s.live)
	for _, a := range s.live {
		st.Kinds[a.Kind]++
		if a.EmbeddingModel != "" {
			st.Models[a.EmbeddingModel]++
		}
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		st.Revisions = tx.Bucket(rowsBucket).Stats().KeyN
		st.Manifests = tx.Bucket(logBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "stats", Err: err}
	}

	if fi, err := os.Stat(s.path); err == nil {
		st.FileSize = fi.Size()
	}
	return st, nil
}

func writeManifest(tx *bolt.Tx, m *manifest) error {
	data, err := encodeManifest(m)
	if err != nil {
		return err
	}
	return tx.Bucket(logBucket).Put(versionKey(m.Version), data)
}

func readHead(meta *bolt.Bucket) uint64 {
	data := meta.Get(headKey)
	if len(data) != 8 {
		return 0
	}
	v, _ := parseVersionKey(data)
	return v
}

func sortByCreation(list []*domain.Artifact) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func cloneArtifact(a *domain.Artifact) *domain.Artifact {
	c := *a
	if a.Metadata != nil {
		c.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
