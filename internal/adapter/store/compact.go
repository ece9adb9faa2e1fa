package store

import (
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"axiom/internal/domain"
)

// CompactStats reports what a compaction pass removed.
type CompactStats struct {
	RevisionsRemoved int `json:"revisions_removed"`
	ManifestsRemoved int `json:"manifests_removed"`
}

type revisionRef struct {
	key       []byte
	version   uint64
	updatedAt time.Time
	deleted   bool
}

// Compact prunes historical revisions. keepVersions bounds how many
// revisions survive per artifact; olderThan, when nonzero, additionally
// protects every revision younger than the cutoff. The newest revision
// of each artifact is always kept, except a tombstone that is the sole
// survivor, which is dropped so removed artifacts stop occupying space.
// Manifests whose rows are all gone are pruned with them; HEAD is never
// touched.
func (s *Store) Compact(keepVersions int, olderThan time.Duration) (*CompactStats, error) {
	if keepVersions <= 0 && olderThan <= 0 {
		keepVersions = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &CompactStats{}
	err := s.db.Update(func(tx *bolt.Tx) error {
		rows := tx.Bucket(rowsBucket)
		vectors := tx.Bucket(vectorsBucket)
		log := tx.Bucket(logBucket)

		byID := make(map[string][]revisionRef)
		err := rows.ForEach(func(k, v []byte) error {
			id, version, err := parseRowKey(k)
			if err != nil {
				return err
			}
			rec, err := decodeRow(v)
			if err != nil {
				return err
			}
			key := make([]byte, len(k))
			copy(key, k)
			byID[id] = append(byID[id], revisionRef{
				key: key, version: version, updatedAt: rec.UpdatedAt, deleted: rec.Deleted,
			})
			return nil
		})
		if err != nil {
			return err
		}

		cutoff := time.Time{}
		if olderThan > 0 {
			cutoff = time.Now().UTC().Add(-olderThan)
		}

		keep := make(map[uint64]bool)
		var drop []revisionRef
		for _, revs := range byID {
			// Rows iterate in key order, so revs is version-ascending.
			kept := 0
			for i := len(revs) - 1; i >= 0; i-- {
				r := revs[i]
				newest := i == len(revs)-1
				protect := newest
				if keepVersions > 0 && kept < keepVersions {
					protect = true
				}
				if !cutoff.IsZero() && r.updatedAt.After(cutoff) {
					protect = true
				}
				if newest && r.deleted && len(revs) == 1 {
					// Lone tombstone: the artifact is fully reclaimed.
					protect = false
				}
				if protect {
					keep[r.version] = true
					kept++
				} else {
					drop = append(drop, r)
				}
			}
		}

		for _, r := range drop {
			if err := rows.Delete(r.key); err != nil {
				return err
			}
			if err := vectors.Delete(append(r.key, vectorContentSuffix...)); err != nil {
				return err
			}
			if err := vectors.Delete(append(r.key, vectorContextSuffix...)); err != nil {
				return err
			}
			stats.RevisionsRemoved++
		}

		var stale [][]byte
		c := log.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			v, err := parseVersionKey(k)
			if err != nil {
				return err
			}
			if v != s.head && !keep[v] {
				key := make([]byte, len(k))
				copy(key, k)
				stale = append(stale, key)
			}
		}
		for _, k := range stale {
			if err := log.Delete(k); err != nil {
				return err
			}
			stats.ManifestsRemoved++
		}
		return nil
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "compact", Err: err}
	}
	return stats, nil
}

// Vacuum rewrites the store file to release pages freed by compaction.
// The rewrite goes to a sibling temp file which replaces the original
// only after a clean copy, so a failure leaves the store untouched.
func (s *Store) Vacuum() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".vacuum"
	dst, err := bolt.Open(tmp, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return &domain.StorageError{Op: "vacuum", Err: err}
	}

	err = dst.Update(func(dtx *bolt.Tx) error {
		return s.db.View(func(stx *bolt.Tx) error {
			return stx.ForEach(func(name []byte, b *bolt.Bucket) error {
				out, err := dtx.CreateBucket(name)
				if err != nil {
					return err
				}
				return b.ForEach(func(k, v []byte) error {
					return out.Put(k, v)
				})
			})
		})
	})
	if err == nil {
		err = dst.Close()
	} else {
		dst.Close()
	}
	if err != nil {
		os.Remove(tmp)
		return &domain.StorageError{Op: "vacuum", Err: err}
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmp)
		return &domain.StorageError{Op: "vacuum", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		// The original file is still in place; reopen it so the store
		// stays usable.
		if db, reopenErr := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: time.Second}); reopenErr == nil {
			s.db = db
		}
		os.Remove(tmp)
		return &domain.StorageError{Op: "vacuum", Err: err}
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return &domain.StorageError{Op: "vacuum", Err: err}
	}
	s.db = db
	return nil
}
