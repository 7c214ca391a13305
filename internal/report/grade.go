package report

// Grade is the colour band of a ROAS value relative to its target.
type Grade string

// Grades, from best to worst.
const (
	GradeGood Grade = "good"
	GradeWarn Grade = "warn"
	GradeBad  Grade = "bad"
	GradeNone Grade = "none"
)

// GradeROAS returns good at or above target, warn at or above
// target*warnRatio and bad below that.
func GradeROAS(roas, target, warnRatio float64) Grade {
	if target <= 0 {
		return GradeNone
	}
	switch {
	case roas >= target:
		return GradeGood
	case roas >= target*warnRatio:
		return GradeWarn
	default:
		return GradeBad
	}
}

// Label is a short human label for the grade.
func (g Grade) Label() string {
	switch g {
	case GradeGood:
		return "달성"
	case GradeWarn:
		return "주의"
	case GradeBad:
		return "미달"
	default:
		return "-"
	}
}
