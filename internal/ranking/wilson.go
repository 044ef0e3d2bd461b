package ranking

import "math"

// DefaultConfidence is the confidence level used when none is configured.
const DefaultConfidence = 0.9

// Score returns the lower bound of the Wilson score interval for positive
// successes out of total Bernoulli trials at the given confidence level. It
// returns 0 when total is not positive or the bound is not finite.
func Score(positive, total, confidence float64) float64 {
	if total <= 0 || positive <= 0 {
		return 0
	}
	if positive > total {
		positive = total
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultConfidence
	}
	z := normalQuantile(1 - (1-confidence)/2)
	phat := positive / total
	z2 := z * z
	bound := (phat + z2/(2*total) - z*math.Sqrt((phat*(1-phat)+z2/(4*total))/total)) / (1 + z2/total)
	if math.IsNaN(bound) || math.IsInf(bound, 0) {
		return 0
	}
	return bound
}

// normalQuantile is the inverse CDF of the standard normal distribution.
func normalQuantile(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
