package usecase

import (
	"time"

	"axiom/internal/adapter/store"
)

// Prune compacts historical revisions and optionally rewrites the store
// file to return the freed space to the filesystem. Zero keepVersions
// falls back to the configured retention.
func (s *Service) Prune(keepVersions int, olderThan time.Duration, vacuum bool) (*store.CompactStats, error) {
	if keepVersions <= 0 && olderThan <= 0 {
		keepVersions = s.Config.Storage.KeepVersions
	}
	stats, err := s.Store.Compact(keepVersions, olderThan)
	if err != nil {
		return nil, err
	}
	if vacuum {
		if err := s.Store.Vacuum(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Stats reports the physical state of the store.
func (s *Service) Stats() (*store.Stats, error) {
	return s.Store.Stats()
}
