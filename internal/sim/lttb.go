package sim

import "github.com/foregonehq/foregone/internal/models"

// Downsample reduces a daily series to at most target points using
// largest-triangle-three-buckets. The first and last points are always kept;
// each intermediate bucket contributes the point maximizing the triangle
// area formed with the previously selected point and the centroid of the
// next bucket, which preserves local peaks and troughs a uniform stride
// would skip.
//
// The X coordinate is the ordinal index, which is valid because the engine
// emits exactly one point per calendar day with no gaps. Output is always a
// strict subsequence of the input; nothing is interpolated.
//
// target <= 0 or target >= len(series) returns the input unchanged.
func Downsample(series []models.GraphPoint, target int) []models.GraphPoint {
	if target <= 0 || target >= len(series) || len(series) < 3 {
		return series
	}
	if target < 3 {
		// Cannot keep both endpoints and still bucket; endpoints win.
		return []models.GraphPoint{series[0], series[len(series)-1]}
	}

	sampled := make([]models.GraphPoint, 0, target)
	sampled = append(sampled, series[0])

	// Interior points are split across target-2 buckets.
	bucketSize := float64(len(series)-2) / float64(target-2)
	prevIdx := 0

	for bucket := 0; bucket < target-2; bucket++ {
		lo := int(float64(bucket)*bucketSize) + 1
		hi := int(float64(bucket+1)*bucketSize) + 1
		if hi >= len(series)-1 {
			hi = len(series) - 1
		}

		// Look-ahead centroid: the averaged position of the next bucket
		// (or the final point for the last bucket).
		nextLo := hi
		nextHi := int(float64(bucket+2)*bucketSize) + 1
		if nextHi >= len(series) {
			nextHi = len(series)
		}
		var avgX, avgY float64
		n := nextHi - nextLo
		if n <= 0 {
			nextLo = len(series) - 1
			n = 1
		}
		for i := nextLo; i < nextLo+n; i++ {
			avgX += float64(i)
			avgY += series[i].Value
		}
		avgX /= float64(n)
		avgY /= float64(n)

		prevX := float64(prevIdx)
		prevY := series[prevIdx].Value

		maxArea := -1.0
		chosen := lo
		for i := lo; i < hi; i++ {
			// Twice the triangle area; the constant factor is irrelevant
			// for the argmax.
			area := abs((prevX-avgX)*(series[i].Value-prevY) - (prevX-float64(i))*(avgY-prevY))
			if area > maxArea {
				maxArea = area
				chosen = i
			}
		}

		sampled = append(sampled, series[chosen])
		prevIdx = chosen
	}

	sampled = append(sampled, series[len(series)-1])
	return sampled
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
