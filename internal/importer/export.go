package importer

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

var exportHeader = []string{
	"Activity Type", "Date", "Title", "Distance", "Time", "Avg HR", "Calories", "Total Sets", "Total Reps",
}

// WriteCSV writes workouts in the app's own export layout, which ParseCSV
// reads back. The file starts with a UTF-8 BOM so spreadsheet tools pick
// the right encoding.
func WriteCSV(w io.Writer, workouts []analysis.Workout) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, wo := range workouts {
		kind := "Strength"
		if wo.Type == analysis.TypeRun {
			kind = "Run"
		}

		var sets, reps int
		for _, ex := range wo.Exercises {
			s := ex.Sets.Int()
			sets += s
			reps += ex.Reps.Int() * s
		}

		record := []string{
			kind,
			wo.Date,
			wo.Title,
			string(wo.RunDistance),
			string(wo.RunDuration),
			string(wo.RunHeartRate),
			string(wo.Calories),
			strconv.Itoa(sets),
			strconv.Itoa(reps),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
