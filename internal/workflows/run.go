package workflows

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/JustinTDCT/PosterVault/internal/clients"
	"github.com/JustinTDCT/PosterVault/internal/config"
	"github.com/JustinTDCT/PosterVault/internal/matcher"
	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/reconcile"
	"github.com/JustinTDCT/PosterVault/internal/repository"
	"github.com/JustinTDCT/PosterVault/internal/scanner"
	"github.com/JustinTDCT/PosterVault/internal/search"
	"github.com/sahilm/fuzzy"
)

// jobRetention is how long finished webhook jobs stay listable before the
// run pass prunes them.
const jobRetention = 7 * 24 * time.Hour

// Runner wires the scan, merge, sync and match stages into one pass over
// every configured source directory and upstream instance.
type Runner struct {
	Config      *config.Config
	Media       *repository.MediaCacheRepository
	Collections *repository.CollectionCacheRepository
	Posters     *repository.PosterRepository
	PlexItems   *repository.PlexRepository
	RunState    *repository.RunStateRepository
	Jobs        *repository.JobRepository
	Syncer      *reconcile.Syncer

	Radarr []*clients.RadarrClient
	Sonarr []*clients.SonarrClient
	Plex   []*clients.PlexClient
}

// Run executes one full pass: scan and merge the source directories, sync
// each upstream scope into the cache tables, then match every cached record
// against the merged assets. force bypasses the staleness window.
func (r *Runner) Run(ctx context.Context, force bool) (*models.RunResult, error) {
	result := &models.RunResult{StartedAt: time.Now().UTC()}

	ix, assets, err := r.scanAndMerge()
	if err != nil {
		return nil, err
	}
	result.AssetsScanned = len(assets)
	log.Printf("Run: merged %d assets (%d indexed titles) from %d source dirs",
		len(assets), ix.Len(), len(r.Config.Sources))

	// A failed fetch or sync leaves that type's poster rows untouched;
	// pruning them would wipe a scope over a transient upstream outage.
	prunable := map[models.AssetType]bool{
		models.AssetTypeMovie:      true,
		models.AssetTypeSeries:     true,
		models.AssetTypeCollection: true,
	}

	for _, rc := range r.Radarr {
		records, err := rc.Movies(ctx)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			log.Printf("Run: %v", err)
			prunable[models.AssetTypeMovie] = false
			continue
		}
		if !r.syncAndMatchMedia(ix, rc.Instance(), models.AssetTypeMovie, records, force, result) {
			prunable[models.AssetTypeMovie] = false
		}
	}

	for _, sc := range r.Sonarr {
		records, err := sc.Series(ctx)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			log.Printf("Run: %v", err)
			prunable[models.AssetTypeSeries] = false
			continue
		}
		if !r.syncAndMatchMedia(ix, sc.Instance(), models.AssetTypeSeries, records, force, result) {
			prunable[models.AssetTypeSeries] = false
		}
	}

	for _, pc := range r.Plex {
		if err := r.syncPlex(ctx, pc, ix, force, result); err != nil {
			result.Errors = append(result.Errors, err.Error())
			log.Printf("Run: %v", err)
			prunable[models.AssetTypeCollection] = false
		}
	}

	for _, t := range []models.AssetType{models.AssetTypeMovie, models.AssetTypeSeries, models.AssetTypeCollection} {
		if !prunable[t] {
			log.Printf("Run: skipping %s poster prune after upstream errors", t)
			continue
		}
		if pruned, err := r.Posters.DeleteStaleByType(t, result.StartedAt); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("prune %s posters: %v", t, err))
		} else if pruned > 0 {
			log.Printf("Run: pruned %d stale %s poster rows", pruned, t)
		}
	}

	if err := r.RunState.MarkRun("full", result.StartedAt); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("record run state: %v", err))
	}

	if _, err := r.Jobs.PruneFinished(result.StartedAt.Add(-jobRetention)); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("prune finished jobs: %v", err))
	}

	result.FinishedAt = time.Now().UTC()
	log.Printf("Run: finished in %s (%d matched, %d unmatched)",
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond), result.Matched, result.Unmatched)
	return result, nil
}

// scanAndMerge scans every source directory in ascending priority order and
// merges the results, so later (higher priority) directories win conflicts.
func (r *Runner) scanAndMerge() (*search.Index, []*models.Asset, error) {
	sources := make([]config.SourceDir, len(r.Config.Sources))
	copy(sources, r.Config.Sources)
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Priority < sources[j].Priority })

	var scans [][]*models.Asset
	for _, src := range sources {
		assets, err := scanner.Scan(src.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", src.Path, err)
		}
		log.Printf("Run: scanned %s (%d assets)", src.Path, len(assets))
		scans = append(scans, assets)
	}

	ix := search.New()
	merged := matcher.MergeAssets(scans, ix)
	return ix, merged, nil
}

// syncAndMatchMedia reconciles one scope and matches its records. Returns
// false when the cache sync failed and the scope's rows may be half-written.
func (r *Runner) syncAndMatchMedia(ix *search.Index, instance string, t models.AssetType, records []*models.MediaRecord, force bool, result *models.RunResult) bool {
	rows := make([]*models.MediaCacheRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, mediaCacheRow(rec))
	}

	sync, err := r.Syncer.SyncMedia(instance, t, rows, force)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		log.Printf("Run: %v", err)
		return false
	}
	result.Orphaned += sync.Orphaned

	for _, rec := range records {
		r.matchMediaRecord(ix, rec, result)
	}
	return true
}

// matchMediaRecord finds the asset for one record, marks the cache row, and
// projects the asset's files into the poster table.
func (r *Runner) matchMediaRecord(ix *search.Index, rec *models.MediaRecord, result *models.RunResult) {
	asset, res := findMatch(ix, rec)
	if asset == nil {
		result.Unmatched++
		r.reportUnmatched(ix, rec)
		return
	}

	if rec.Type == models.AssetTypeSeries {
		matcher.HandleSeriesMatch(asset, rec)
	}
	if len(asset.Files) == 0 {
		result.Unmatched++
		return
	}

	key := mediaKey(rec)
	if err := r.Media.SetMatched(key, asset.Files[len(asset.Files)-1].Path); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Matched++
	log.Printf("Match: %s %q (%s): %s", rec.Type, rec.Title, res.Reason, strings.Join(asset.FilePaths(), ", "))

	for _, f := range asset.Files {
		row := &models.PosterRow{
			AssetType: rec.Type,
			Title:     rec.Title,
			Year:      rec.Year,
			TMDBID:    rec.IDs.TMDBID,
			TVDBID:    rec.IDs.TVDBID,
			IMDBID:    rec.IDs.IMDBID,
			Season:    f.Season,
			File:      f.Path,
			Reason:    res.Reason,
		}
		if err := r.Posters.Upsert(row); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}
}

func (r *Runner) syncPlex(ctx context.Context, pc *clients.PlexClient, ix *search.Index, force bool, result *models.RunResult) error {
	libs, err := pc.Libraries(ctx)
	if err != nil {
		return err
	}

	for _, lib := range libs {
		if err := r.PlexItems.ReplaceLibrary(pc.Instance(), lib.Name, lib.Items); err != nil {
			return fmt.Errorf("plex snapshot %q: %w", lib.Name, err)
		}

		records, err := pc.Collections(ctx, lib)
		if err != nil {
			return err
		}

		rows := make([]*models.CollectionCacheRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, collectionCacheRow(rec))
		}
		sync, err := r.Syncer.SyncCollections(pc.Instance(), lib.Name, rows, force)
		if err != nil {
			return err
		}
		result.Orphaned += sync.Orphaned

		for _, rec := range records {
			r.matchCollectionRecord(ix, rec, result)
		}
	}
	return nil
}

func (r *Runner) matchCollectionRecord(ix *search.Index, rec *models.MediaRecord, result *models.RunResult) {
	asset, res := findMatch(ix, rec)
	if asset == nil || len(asset.Files) == 0 {
		result.Unmatched++
		r.reportUnmatched(ix, rec)
		return
	}

	key := collectionKey(rec)
	if err := r.Collections.SetMatched(key, asset.Files[len(asset.Files)-1].Path); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Matched++

	for _, f := range asset.Files {
		row := &models.PosterRow{
			AssetType: rec.Type,
			Title:     rec.Title,
			Year:      rec.Year,
			TMDBID:    rec.IDs.TMDBID,
			TVDBID:    rec.IDs.TVDBID,
			IMDBID:    rec.IDs.IMDBID,
			File:      f.Path,
			Reason:    res.Reason,
		}
		if err := r.Posters.Upsert(row); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}
}

// findMatch runs the index retrieval plus match rules for one record.
func findMatch(ix *search.Index, rec *models.MediaRecord) (*models.Asset, matcher.Result) {
	for _, candidate := range ix.Search(rec.Title, rec.Type) {
		if res := matcher.IsMatch(candidate, rec); res.Matched {
			return candidate, res
		}
	}
	// Alternate titles may start with a different word than the primary.
	for _, alt := range rec.AlternateTitles {
		for _, candidate := range ix.Search(alt, rec.Type) {
			if res := matcher.IsMatch(candidate, rec); res.Matched {
				return candidate, res
			}
		}
	}
	return nil, matcher.Result{}
}

// reportUnmatched logs the closest asset titles for a record nothing matched,
// so the operator can spot near-misses like renamed folders.
func (r *Runner) reportUnmatched(ix *search.Index, rec *models.MediaRecord) {
	candidates := ix.Search(rec.Title, rec.Type)
	if len(candidates) == 0 {
		log.Printf("Match: no asset for %s %q", rec.Type, rec.Title)
		return
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Title
	}
	matches := fuzzy.Find(rec.Title, names)
	limit := 3
	if len(matches) < limit {
		limit = len(matches)
	}
	closest := make([]string, 0, limit)
	for _, m := range matches[:limit] {
		closest = append(closest, names[m.Index])
	}
	if len(closest) == 0 {
		closest = names[:1]
	}
	log.Printf("Match: no asset for %s %q (closest: %s)", rec.Type, rec.Title, strings.Join(closest, ", "))
}

// DrainJobs processes queued webhook jobs. Any pending job triggers one
// forced pass; the pass covers every queued target, so all claimed jobs
// settle together.
func (r *Runner) DrainJobs(ctx context.Context) error {
	var claimed []*models.Job
	for {
		job, err := r.Jobs.NextPending()
		if err != nil {
			return err
		}
		if job == nil {
			break
		}
		claimed = append(claimed, job)
	}
	if len(claimed) == 0 {
		return nil
	}

	log.Printf("Run: draining %d queued jobs", len(claimed))
	_, runErr := r.Run(ctx, true)
	for _, job := range claimed {
		if runErr != nil {
			if err := r.Jobs.MarkFailed(job.ID, runErr.Error()); err != nil {
				log.Printf("Run: mark job failed: %v", err)
			}
			continue
		}
		if err := r.Jobs.MarkDone(job.ID); err != nil {
			log.Printf("Run: mark job done: %v", err)
		}
	}
	return runErr
}

func mediaKey(rec *models.MediaRecord) models.MediaKey {
	return models.MediaKey{
		Type:     rec.Type,
		Title:    rec.Title,
		Year:     rec.Year,
		TMDBID:   rec.IDs.TMDBID,
		TVDBID:   rec.IDs.TVDBID,
		IMDBID:   rec.IDs.IMDBID,
		Instance: rec.InstanceName,
	}
}

func collectionKey(rec *models.MediaRecord) models.CollectionKey {
	return models.CollectionKey{
		Title:    rec.Title,
		Year:     rec.Year,
		TMDBID:   rec.IDs.TMDBID,
		TVDBID:   rec.IDs.TVDBID,
		IMDBID:   rec.IDs.IMDBID,
		Library:  rec.LibraryName,
		Instance: rec.InstanceName,
	}
}

func mediaCacheRow(rec *models.MediaRecord) *models.MediaCacheRow {
	row := &models.MediaCacheRow{
		Key:       mediaKey(rec),
		Monitored: rec.Monitored,
	}
	if rec.Folder != "" {
		folder := rec.Folder
		row.Folder = &folder
	}
	if rec.RootFolder != "" {
		root := rec.RootFolder
		row.RootFolder = &root
	}
	if len(rec.Tags) > 0 {
		tags := strings.Join(rec.Tags, ",")
		row.Tags = &tags
	}
	return row
}

func collectionCacheRow(rec *models.MediaRecord) *models.CollectionCacheRow {
	row := &models.CollectionCacheRow{Key: collectionKey(rec)}
	if rec.Folder != "" {
		folder := rec.Folder
		row.Folder = &folder
	}
	return row
}
