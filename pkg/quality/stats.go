package quality

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// sampleStdDev uses the n-1 denominator. Returns 0 for fewer than two
// values.
func sampleStdDev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// countOutliers uses the modified z-score, 0.6745 * (x - median) / MAD.
// The plain z-score cannot exceed (n-1)/sqrt(n) and so never flags anything
// in small samples; the median-based form flags a lone extreme value even
// among five rows. A zero MAD means at least half the values are identical
// and nothing is flagged.
func countOutliers(values []float64, threshold float64) int {
	if len(values) < 3 {
		return 0
	}

	med := median(values)
	devs := make([]float64, len(values))
	for i, v := range values {
		devs[i] = math.Abs(v - med)
	}
	mad := median(devs)
	if mad == 0 {
		return 0
	}

	count := 0
	for _, v := range values {
		if 0.6745*math.Abs(v-med)/mad > threshold {
			count++
		}
	}
	return count
}
