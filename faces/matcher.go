package faces

import (
	"math"
	"time"
)

// Correlation computes the Pearson correlation coefficient between two
// encodings in float64. Mismatched or degenerate inputs (length difference,
// empty, zero variance) produce NaN, which Match treats as "not a
// candidate".
func Correlation(a, b Encoding) float64 {
	n := len(a)
	if n == 0 || len(b) != n {
		return math.NaN()
	}
	var sumA, sumB, sumAA, sumBB, sumAB float64
	for i := 0; i < n; i++ {
		x := float64(a[i])
		y := float64(b[i])
		sumA += x
		sumB += y
		sumAA += x * x
		sumBB += y * y
		sumAB += x * y
	}
	fn := float64(n)
	cov := fn*sumAB - sumA*sumB
	varA := fn*sumAA - sumA*sumA
	varB := fn*sumBB - sumB*sumB
	denom := math.Sqrt(varA * varB)
	if denom == 0 {
		return math.NaN()
	}
	return cov / denom
}

// Match compares a live encoding against the enrolled snapshot and returns
// the best detection. A winner must strictly exceed both minConfidence and
// every earlier candidate; no winner means unknown (nil StudentID,
// confidence 0).
func Match(live Encoding, enrolled []EnrolledFace, minConfidence float64) Detection {
	bestConfidence := 0.0
	var best *EnrolledFace
	for i := range enrolled {
		correlation := Correlation(live, enrolled[i].Encoding)
		if math.IsNaN(correlation) {
			continue
		}
		if correlation > bestConfidence && correlation > minConfidence {
			bestConfidence = correlation
			best = &enrolled[i]
		}
	}
	if best == nil {
		return Detection{Name: "Unknown", Confidence: 0, Timestamp: time.Now()}
	}
	id := best.StudentID
	return Detection{
		StudentID:  &id,
		Name:       best.Name,
		Confidence: bestConfidence,
		Timestamp:  time.Now(),
	}
}
