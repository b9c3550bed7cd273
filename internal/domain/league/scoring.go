package league

type ScoringMethod string

const (
	ScoringAccuracyThenTime ScoringMethod = "accuracy_then_time"
	ScoringTimeThenAccuracy ScoringMethod = "time_then_accuracy"
	ScoringPointsOnly       ScoringMethod = "points_only"
)

func (m ScoringMethod) Valid() bool {
	switch m {
	case ScoringAccuracyThenTime, ScoringTimeThenAccuracy, ScoringPointsOnly:
		return true
	default:
		return false
	}
}

// Comparator reports whether candidate strictly beats best.
type Comparator func(candidate, best Score) bool

// ComparatorFor selects the comparator for a method. Unknown methods compare
// on points only.
func ComparatorFor(method ScoringMethod) Comparator {
	switch method {
	case ScoringAccuracyThenTime:
		return accuracyThenTime
	case ScoringTimeThenAccuracy:
		return timeThenAccuracy
	default:
		return pointsOnly
	}
}

func IsBetter(candidate, best Score, method ScoringMethod) bool {
	return ComparatorFor(method)(candidate, best)
}

func accuracyThenTime(candidate, best Score) bool {
	if candidate.Accuracy != best.Accuracy {
		return candidate.Accuracy > best.Accuracy
	}
	return candidate.TimeSeconds < best.TimeSeconds
}

func timeThenAccuracy(candidate, best Score) bool {
	if candidate.TimeSeconds != best.TimeSeconds {
		return candidate.TimeSeconds < best.TimeSeconds
	}
	return candidate.Accuracy > best.Accuracy
}

func pointsOnly(candidate, best Score) bool {
	return candidate.Points > best.Points
}
