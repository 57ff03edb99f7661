package store

import (
	"context"
	"fmt"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

// SaveBodyLog stores the measurement for its date, replacing any earlier
// entry for the same day.
func (s *Store) SaveBodyLog(ctx context.Context, l analysis.BodyLog) error {
	if l.Date == "" {
		return fmt.Errorf("body log date is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO body_logs (date, weight, body_fat, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			weight = excluded.weight,
			body_fat = excluded.body_fat,
			updated_at = CURRENT_TIMESTAMP
	`, l.Date, string(l.Weight), string(l.BodyFat))
	return err
}

// ListBodyLogs returns logs dated within [from, to], oldest first. Empty
// bounds are open.
func (s *Store) ListBodyLogs(ctx context.Context, from, to string) ([]analysis.BodyLog, error) {
	query := `SELECT date, weight, body_fat FROM body_logs WHERE 1 = 1`
	var args []any
	if from != "" {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []analysis.BodyLog
	for rows.Next() {
		var date, weight, fat string
		if err := rows.Scan(&date, &weight, &fat); err != nil {
			return nil, err
		}
		logs = append(logs, analysis.BodyLog{
			Date:    date,
			Weight:  analysis.NumString(weight),
			BodyFat: analysis.NumString(fat),
		})
	}
	return logs, rows.Err()
}

// DeleteBodyLog removes the log for date. Deleting a missing date is not an error.
func (s *Store) DeleteBodyLog(ctx context.Context, date string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM body_logs WHERE date = ?`, date)
	return err
}
