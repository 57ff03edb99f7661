package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/store"
	"github.com/fish0048-ai/my-ai-coach/internal/strava"
)

// ErrUnsupportedPlatform is returned for a platform name SyncPlatform does
// not know.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ActivitySource fetches activity summaries from Strava.
type ActivitySource interface {
	GetAllActivities(ctx context.Context, after time.Time, limit int, onProgress func(fetched int)) ([]strava.Activity, error)
}

// Invalidator drops cached analytics after a write.
type Invalidator interface {
	Invalidate()
	InvalidateBodyLogs()
}

// SyncService orchestrates syncing workouts from remote platforms
type SyncService struct {
	source ActivitySource
	store  *store.Store
	cache  Invalidator
}

// NewSyncService creates a sync service. source may be nil when no Strava
// credentials are stored; strava syncs then report missing credentials.
func NewSyncService(source ActivitySource, st *store.Store, cache Invalidator) *SyncService {
	return &SyncService{
		source: source,
		store:  st,
		cache:  cache,
	}
}

// SyncOptions narrows a sync. Zero values mean no restriction.
type SyncOptions struct {
	DryRun bool
	Since  time.Time // overrides the stored cursor
	Until  time.Time // inclusive
	Limit  int
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase     string // "fetch", "store"
	Total     int
	Completed int
}

// SyncError is one structured problem met during a sync.
type SyncError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e SyncError) Error() string {
	return e.Code + ": " + e.Message
}

// PlatformSyncResult contains the results of a sync operation
type PlatformSyncResult struct {
	Platform       string         `json:"platform"`
	OK             bool           `json:"ok"`
	ImportedCount  int            `json:"importedCount"`
	UpdatedCount   int            `json:"updatedCount"`
	SkippedCount   int            `json:"skippedCount"`
	Errors         []SyncError    `json:"errors"`
	NextSyncCursor string         `json:"nextSyncCursor,omitempty"`
	Meta           map[string]any `json:"meta"`
}

func (r *PlatformSyncResult) addError(code, format string, args ...any) {
	r.Errors = append(r.Errors, SyncError{Code: code, Message: fmt.Sprintf(format, args...)})
}

// SyncPlatform pulls workouts from platform into the store. Problems are
// reported in the result; the returned error is non-nil only for an unknown
// platform or a cancelled context.
func (s *SyncService) SyncPlatform(ctx context.Context, platform string, opts SyncOptions, progress chan<- SyncProgress) (*PlatformSyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &PlatformSyncResult{
		Platform: platform,
		Errors:   []SyncError{},
		Meta: map[string]any{
			"supportedPlatforms": SupportedPlatforms,
			"dryRun":             opts.DryRun,
		},
	}
	logger := log.WithField("platform", platform)

	switch platform {
	case PlatformStrava:
		if err := s.syncStrava(ctx, opts, progress, result); err != nil {
			return result, err
		}
	case PlatformGarmin, PlatformAppleHealth:
		result.addError(CodeNotImplemented, "%s sync is not available; import a CSV export instead", platform)
	default:
		result.Platform = ""
		result.addError(CodeInvalidPlatform, "unsupported platform %q, supported: %v", platform, SupportedPlatforms)
		return result, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}

	result.OK = len(result.Errors) == 0
	logger.WithFields(log.Fields{
		"imported": result.ImportedCount,
		"updated":  result.UpdatedCount,
		"skipped":  result.SkippedCount,
		"errors":   len(result.Errors),
	}).Info("sync: finished")
	return result, nil
}

// syncStrava fetches activities newer than the stored cursor and upserts the
// ones the analytics model.
func (s *SyncService) syncStrava(ctx context.Context, opts SyncOptions, progress chan<- SyncProgress, result *PlatformSyncResult) error {
	if s.source == nil {
		result.addError(CodeMissingCredentials, "no Strava authorization stored; run `coach auth` first")
		return nil
	}

	after := opts.Since
	if after.IsZero() {
		after = s.cursor(ctx)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "fetch"}
	}
	activities, err := s.source.GetAllActivities(ctx, after, opts.Limit, func(fetched int) {
		if progress != nil {
			progress <- SyncProgress{Phase: "fetch", Completed: fetched}
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result.addError(CodeFetchFailed, "fetching activities: %s", err)
	}
	fetchFailed := err != nil

	var (
		workouts []analysis.Workout
		newest   time.Time
	)
	for _, a := range activities {
		if !opts.Until.IsZero() && a.StartDate.After(opts.Until) {
			result.SkippedCount++
			continue
		}
		if a.StartDate.After(newest) {
			newest = a.StartDate
		}
		w, ok := strava.ToWorkout(a)
		if !ok {
			log.WithField("sport", a.Sport()).Debugf("sync: skipping activity %d", a.ID)
			result.SkippedCount++
			continue
		}
		workouts = append(workouts, w)
	}
	if !newest.IsZero() {
		result.NextSyncCursor = strconv.FormatInt(newest.Unix(), 10)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "store", Total: len(workouts)}
	}

	if opts.DryRun {
		return s.countExisting(ctx, workouts, result)
	}

	if len(workouts) > 0 {
		created, updated, err := s.store.SaveWorkouts(ctx, workouts)
		if err != nil {
			result.addError(CodeStoreFailed, "saving workouts: %s", err)
			return nil
		}
		result.ImportedCount, result.UpdatedCount = created, updated
		if s.cache != nil {
			s.cache.Invalidate()
		}
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "store", Total: len(workouts), Completed: len(workouts)}
	}

	// A partial fetch must not move the cursor past activities never seen
	if result.NextSyncCursor != "" && !fetchFailed {
		if err := s.store.SetSyncState(ctx, store.SyncKeyLastActivity, result.NextSyncCursor); err != nil {
			result.addError(CodeStoreFailed, "saving sync cursor: %s", err)
		}
	}
	if err := s.store.SetSyncState(ctx, store.SyncKeyLastRun, time.Now().UTC().Format(time.RFC3339)); err != nil {
		log.Warnf("sync: recording run time: %s", err)
	}
	return nil
}

// cursor returns the stored incremental sync position, zero when absent.
func (s *SyncService) cursor(ctx context.Context) time.Time {
	v, err := s.store.GetSyncState(ctx, store.SyncKeyLastActivity)
	if err != nil {
		log.Warnf("sync: reading cursor: %s", err)
		return time.Time{}
	}
	if v == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Warnf("sync: ignoring malformed cursor %q", v)
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// countExisting fills the counts a real sync would produce without writing.
func (s *SyncService) countExisting(ctx context.Context, workouts []analysis.Workout, result *PlatformSyncResult) error {
	for _, w := range workouts {
		_, err := s.store.GetWorkout(ctx, w.ID)
		switch {
		case errors.Is(err, store.ErrWorkoutNotFound):
			result.ImportedCount++
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			result.addError(CodeStoreFailed, "checking workout %s: %s", w.ID, err)
		default:
			result.UpdatedCount++
		}
	}
	return nil
}

// LastSync returns when the last sync finished, zero if never.
func (s *SyncService) LastSync(ctx context.Context) (time.Time, error) {
	v, err := s.store.GetSyncState(ctx, store.SyncKeyLastRun)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
