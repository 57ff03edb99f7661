package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

// WorkoutFilter narrows ListWorkouts. Zero fields match everything; From
// and To are inclusive YYYY-MM-DD bounds.
type WorkoutFilter struct {
	From   string
	To     string
	Type   string
	Status string
}

func (f WorkoutFilter) where(alias string) (string, []any) {
	var clauses []string
	var args []any
	add := func(cond, arg string) {
		if arg != "" {
			clauses = append(clauses, alias+cond)
			args = append(args, arg)
		}
	}
	add("date >= ?", f.From)
	add("date <= ?", f.To)
	add("type = ?", f.Type)
	add("status = ?", f.Status)

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// SaveWorkout inserts or replaces a workout and its exercises. created
// reports whether the id was new.
func (s *Store) SaveWorkout(ctx context.Context, w analysis.Workout) (created bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	created, err = saveWorkoutTx(ctx, tx, w)
	if err != nil {
		return false, err
	}
	return created, tx.Commit()
}

// SaveWorkouts upserts a batch in a single transaction.
func (s *Store) SaveWorkouts(ctx context.Context, workouts []analysis.Workout) (created, updated int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	for _, w := range workouts {
		isNew, err := saveWorkoutTx(ctx, tx, w)
		if err != nil {
			return 0, 0, err
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	return created, updated, tx.Commit()
}

func saveWorkoutTx(ctx context.Context, tx *sql.Tx, w analysis.Workout) (bool, error) {
	if w.ID == "" {
		return false, errors.New("workout id is required")
	}
	if w.Date == "" {
		return false, fmt.Errorf("workout %s: date is required", w.ID)
	}

	var exists int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts WHERE id = ?`, w.ID).Scan(&exists)
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workouts (id, date, status, type, title, source,
			run_distance, run_duration, run_pace, run_heart_rate, calories, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			status = excluded.status,
			type = excluded.type,
			title = excluded.title,
			source = excluded.source,
			run_distance = excluded.run_distance,
			run_duration = excluded.run_duration,
			run_pace = excluded.run_pace,
			run_heart_rate = excluded.run_heart_rate,
			calories = excluded.calories,
			updated_at = CURRENT_TIMESTAMP
	`, w.ID, w.Date, w.Status, w.Type, w.Title, w.Source,
		string(w.RunDistance), string(w.RunDuration), w.RunPace, string(w.RunHeartRate), string(w.Calories))
	if err != nil {
		return false, fmt.Errorf("saving workout %s: %w", w.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE workout_id = ?`, w.ID); err != nil {
		return false, err
	}
	for i, ex := range w.Exercises {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO exercises (workout_id, position, name, sets, reps, weight)
			VALUES (?, ?, ?, ?, ?, ?)
		`, w.ID, i, ex.Name, string(ex.Sets), string(ex.Reps), string(ex.Weight))
		if err != nil {
			return false, fmt.Errorf("saving exercise %d of %s: %w", i, w.ID, err)
		}
	}

	return exists == 0, nil
}

const workoutColumns = `id, date, status, type, title, source,
	run_distance, run_duration, run_pace, run_heart_rate, calories`

func scanWorkout(row interface{ Scan(...any) error }) (analysis.Workout, error) {
	var w analysis.Workout
	var dist, dur, hr, cal string
	err := row.Scan(&w.ID, &w.Date, &w.Status, &w.Type, &w.Title, &w.Source,
		&dist, &dur, &w.RunPace, &hr, &cal)
	w.RunDistance = analysis.NumString(dist)
	w.RunDuration = analysis.NumString(dur)
	w.RunHeartRate = analysis.NumString(hr)
	w.Calories = analysis.NumString(cal)
	return w, err
}

// GetWorkout retrieves a single workout with its exercises.
func (s *Store) GetWorkout(ctx context.Context, id string) (*analysis.Workout, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT workout_id, name, sets, reps, weight
		FROM exercises WHERE workout_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	exercises, err := scanExercises(rows)
	if err != nil {
		return nil, err
	}
	w.Exercises = exercises[id]
	return &w, nil
}

// ListWorkouts returns the workouts matching f, oldest first.
func (s *Store) ListWorkouts(ctx context.Context, f WorkoutFilter) ([]analysis.Workout, error) {
	where, args := f.where("")
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts`+where+` ORDER BY date, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []analysis.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	joinWhere, joinArgs := f.where("w.")
	exRows, err := s.db.QueryContext(ctx, `
		SELECT e.workout_id, e.name, e.sets, e.reps, e.weight
		FROM exercises e
		JOIN workouts w ON w.id = e.workout_id`+joinWhere+`
		ORDER BY e.workout_id, e.position
	`, joinArgs...)
	if err != nil {
		return nil, err
	}
	exercises, err := scanExercises(exRows)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		workouts[i].Exercises = exercises[workouts[i].ID]
	}
	return workouts, nil
}

func scanExercises(rows *sql.Rows) (map[string][]analysis.Exercise, error) {
	defer rows.Close()

	out := make(map[string][]analysis.Exercise)
	for rows.Next() {
		var id, name, sets, reps, weight string
		if err := rows.Scan(&id, &name, &sets, &reps, &weight); err != nil {
			return nil, err
		}
		out[id] = append(out[id], analysis.Exercise{
			Name:   name,
			Sets:   analysis.NumString(sets),
			Reps:   analysis.NumString(reps),
			Weight: analysis.NumString(weight),
		})
	}
	return out, rows.Err()
}

// DeleteWorkout removes a workout and its exercises.
func (s *Store) DeleteWorkout(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// CountWorkouts returns the number of stored workouts.
func (s *Store) CountWorkouts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&n)
	return n, err
}
