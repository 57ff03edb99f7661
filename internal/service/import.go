package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/importer"
	"github.com/fish0048-ai/my-ai-coach/internal/store"
)

// ImportService writes locally sourced data: CSV and FIT files and manual
// entries.
type ImportService struct {
	store *store.Store
	cache Invalidator
}

// NewImportService creates an import service. cache may be nil.
func NewImportService(st *store.Store, cache Invalidator) *ImportService {
	return &ImportService{store: st, cache: cache}
}

// ImportResult summarises a file import.
type ImportResult struct {
	Format   importer.Format `json:"format"`
	Imported int             `json:"imported"`
	Updated  int             `json:"updated"`
	Skipped  int             `json:"skipped"`
}

// ImportCSV parses r and upserts its workouts. Re-importing the same file
// updates the earlier rows instead of duplicating them.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parsed, err := importer.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, parsed)
}

// ImportFIT decodes a device FIT activity file and upserts its sessions.
func (s *ImportService) ImportFIT(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parsed, err := importer.ParseFIT(r)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, parsed)
}

func (s *ImportService) save(ctx context.Context, parsed *importer.Result) (*ImportResult, error) {
	result := &ImportResult{Format: parsed.Format, Skipped: parsed.Skipped}
	if len(parsed.Workouts) == 0 {
		return result, nil
	}

	created, updated, err := s.store.SaveWorkouts(ctx, parsed.Workouts)
	if err != nil {
		return nil, fmt.Errorf("saving workouts: %w", err)
	}
	result.Imported, result.Updated = created, updated
	s.invalidate()

	log.WithFields(log.Fields{
		"format":   parsed.Format,
		"imported": created,
		"updated":  updated,
		"skipped":  parsed.Skipped,
	}).Info("import: file imported")
	return result, nil
}

// ExportCSV writes the workouts matching f to w and returns how many were
// written.
func (s *ImportService) ExportCSV(ctx context.Context, w io.Writer, f store.WorkoutFilter) (int, error) {
	workouts, err := s.store.ListWorkouts(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("listing workouts: %w", err)
	}
	if err := importer.WriteCSV(w, workouts); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}
	return len(workouts), nil
}

// AddBodyLog stores a body measurement, replacing any entry for that date.
func (s *ImportService) AddBodyLog(ctx context.Context, l analysis.BodyLog) error {
	if l.Weight.Float() <= 0 && l.BodyFat.Float() <= 0 {
		return fmt.Errorf("body log for %s has neither weight nor body fat", l.Date)
	}
	if err := s.store.SaveBodyLog(ctx, l); err != nil {
		return fmt.Errorf("saving body log: %w", err)
	}
	s.invalidateBodyLogs()
	return nil
}

// AddWorkout stores a single workout, generating an id when it has none.
func (s *ImportService) AddWorkout(ctx context.Context, w analysis.Workout) (analysis.Workout, error) {
	if w.Date == "" {
		return w, fmt.Errorf("workout date is required")
	}
	if w.ID == "" {
		w.ID = importer.NewID(w.Date, uuid.New())
	}
	if w.Status == "" {
		w.Status = analysis.StatusCompleted
	}
	if _, err := s.store.SaveWorkout(ctx, w); err != nil {
		return w, fmt.Errorf("saving workout: %w", err)
	}
	s.invalidate()
	return w, nil
}

// DeleteWorkout removes a workout. It returns store.ErrWorkoutNotFound for
// an unknown id.
func (s *ImportService) DeleteWorkout(ctx context.Context, id string) error {
	if err := s.store.DeleteWorkout(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// DeleteBodyLog removes the body log for date.
func (s *ImportService) DeleteBodyLog(ctx context.Context, date string) error {
	if err := s.store.DeleteBodyLog(ctx, date); err != nil {
		return fmt.Errorf("deleting body log: %w", err)
	}
	s.invalidateBodyLogs()
	return nil
}

func (s *ImportService) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

func (s *ImportService) invalidateBodyLogs() {
	if s.cache != nil {
		s.cache.InvalidateBodyLogs()
	}
}
