package reconcile

import (
	"fmt"
	"log"
	"time"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/repository"
)

// Syncer reconciles freshly fetched upstream records against the cache
// tables. Each pass works on one scope (an instance plus asset type for
// media, an instance plus library for collections): rows present upstream
// are upserted, rows that disappeared are logged as orphans and deleted.
type Syncer struct {
	Media       *repository.MediaCacheRepository
	Collections *repository.CollectionCacheRepository
	Orphans     *repository.OrphanRepository

	// StalenessWindow is how long a scope's rows stay trusted. A scope is
	// stale when it is empty or when any of its rows was last indexed
	// outside the window; non-positive means every pass is a full sync.
	StalenessWindow time.Duration
}

// SyncMedia reconciles one (instance, asset type) scope. When force is false
// and the whole scope is inside the staleness window the pass is skipped.
func (s *Syncer) SyncMedia(instance string, t models.AssetType, fresh []*models.MediaCacheRow, force bool) (models.SyncResult, error) {
	scope := fmt.Sprintf("%s/%s", instance, t)
	result := models.SyncResult{Scope: scope}

	existing, err := s.Media.ListScope(instance, t)
	if err != nil {
		return result, fmt.Errorf("list media scope %s: %w", scope, err)
	}

	if !force && s.scopeFresh(mediaTimes(existing)) {
		log.Printf("Sync: scope %s is fresh, skipping (%d cached rows)", scope, len(existing))
		result.Skipped = true
		return result, nil
	}

	desired := make(map[models.FlatMediaKey]bool, len(fresh))
	for _, row := range fresh {
		desired[row.Key.Flatten()] = true
		inserted, err := s.Media.Upsert(row)
		if err != nil {
			return result, fmt.Errorf("upsert %q: %w", row.Key.Title, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	for _, row := range existing {
		if desired[row.Key.Flatten()] {
			continue
		}
		if path := orphanPath(row.Matched, row.RenamedFile, row.OriginalFile); path != nil {
			orphan := &models.OrphanRow{
				FilePath: *path,
				Title:    row.Key.Title,
				Instance: instance,
			}
			if err := s.Orphans.Record(orphan); err != nil {
				return result, fmt.Errorf("record orphan %q: %w", *path, err)
			}
			result.Orphaned++
		}
		if err := s.Media.Delete(row.ID); err != nil {
			return result, fmt.Errorf("delete %q: %w", row.Key.Title, err)
		}
		result.Deleted++
	}

	log.Printf("Sync: scope %s done (%d inserted, %d updated, %d deleted, %d orphaned)",
		scope, result.Inserted, result.Updated, result.Deleted, result.Orphaned)
	return result, nil
}

// SyncCollections reconciles one (instance, library) collection scope.
func (s *Syncer) SyncCollections(instance, library string, fresh []*models.CollectionCacheRow, force bool) (models.SyncResult, error) {
	scope := fmt.Sprintf("%s/%s", instance, library)
	result := models.SyncResult{Scope: scope}

	existing, err := s.Collections.ListScope(instance, library)
	if err != nil {
		return result, fmt.Errorf("list collection scope %s: %w", scope, err)
	}

	if !force && s.scopeFresh(collectionTimes(existing)) {
		log.Printf("Sync: scope %s is fresh, skipping (%d cached rows)", scope, len(existing))
		result.Skipped = true
		return result, nil
	}

	desired := make(map[models.FlatCollectionKey]bool, len(fresh))
	for _, row := range fresh {
		desired[row.Key.Flatten()] = true
		inserted, err := s.Collections.Upsert(row)
		if err != nil {
			return result, fmt.Errorf("upsert %q: %w", row.Key.Title, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	for _, row := range existing {
		if desired[row.Key.Flatten()] {
			continue
		}
		if path := orphanPath(row.Matched, row.RenamedFile, row.OriginalFile); path != nil {
			orphan := &models.OrphanRow{
				FilePath: *path,
				Title:    row.Key.Title,
				Instance: instance,
			}
			if err := s.Orphans.Record(orphan); err != nil {
				return result, fmt.Errorf("record orphan %q: %w", *path, err)
			}
			result.Orphaned++
		}
		if err := s.Collections.Delete(row.ID); err != nil {
			return result, fmt.Errorf("delete %q: %w", row.Key.Title, err)
		}
		result.Deleted++
	}

	log.Printf("Sync: scope %s done (%d inserted, %d updated, %d deleted, %d orphaned)",
		scope, result.Inserted, result.Updated, result.Deleted, result.Orphaned)
	return result, nil
}

// orphanPath picks the on-disk path to log for a departed matched row: the
// renamed file when a rename ran, else the original scan path. Unmatched
// rows never had a file, so nothing is orphaned.
func orphanPath(matched bool, renamed, original *string) *string {
	if !matched {
		return nil
	}
	if renamed != nil {
		return renamed
	}
	return original
}

// scopeFresh reports whether every row of a scope was indexed inside the
// staleness window. An empty scope, a non-positive window, or a single row
// outside the window all mark the whole scope stale.
func (s *Syncer) scopeFresh(times []time.Time) bool {
	if s.StalenessWindow <= 0 || len(times) == 0 {
		return false
	}
	cutoff := time.Now().UTC().Add(-s.StalenessWindow)
	for _, t := range times {
		if t.IsZero() || t.Before(cutoff) {
			return false
		}
	}
	return true
}

func mediaTimes(rows []*models.MediaCacheRow) []time.Time {
	out := make([]time.Time, len(rows))
	for i, r := range rows {
		out[i] = r.LastIndexed
	}
	return out
}

func collectionTimes(rows []*models.CollectionCacheRow) []time.Time {
	out := make([]time.Time, len(rows))
	for i, r := range rows {
		out[i] = r.LastIndexed
	}
	return out
}
