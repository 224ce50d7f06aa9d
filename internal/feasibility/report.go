package feasibility

import "github.com/noah-isme/sma-timetable-api/internal/models"

// Summary carries the aggregate counts shown next to a warning list.
type Summary struct {
	ErrorCount      int  `json:"errorCount"`
	WarningCount    int  `json:"warningCount"`
	InfoCount       int  `json:"infoCount"`
	GeneralOverload bool `json:"generalOverload"`
	// Blocked is true when at least one error forbids starting generation.
	Blocked bool `json:"blocked"`
}

// Summarize counts warnings per level.
func Summarize(warnings []models.ValidationWarning) Summary {
	var s Summary
	for _, w := range warnings {
		switch w.Level {
		case models.LevelError:
			s.ErrorCount++
		case models.LevelWarning:
			s.WarningCount++
		default:
			s.InfoCount++
		}
		if w.ID == "general-overload" {
			s.GeneralOverload = true
		}
	}
	s.Blocked = s.ErrorCount > 0
	return s
}

// ForEntity keeps the warnings that point at relatedID, preserving order.
func ForEntity(warnings []models.ValidationWarning, relatedID string) []models.ValidationWarning {
	out := make([]models.ValidationWarning, 0)
	for _, w := range warnings {
		if w.RelatedID == relatedID {
			out = append(out, w)
		}
	}
	return out
}

// Partition splits warnings into blocking errors and dismissible warnings. Infos are dropped.
func Partition(warnings []models.ValidationWarning) (errs, warns []models.ValidationWarning) {
	errs = make([]models.ValidationWarning, 0)
	warns = make([]models.ValidationWarning, 0)
	for _, w := range warnings {
		switch w.Level {
		case models.LevelError:
			errs = append(errs, w)
		case models.LevelWarning:
			warns = append(warns, w)
		}
	}
	return errs, warns
}
