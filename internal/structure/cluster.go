// Package structure infers Markdown structure from OCR geometry: text boxes
// are clustered by pixel height into structural levels, and list items are
// detected from their text prefix.
package structure

import "sort"

// Clusterer groups one-dimensional values into at most k clusters and returns
// a label per input value. Implementations must be deterministic: identical
// input must always yield identical labels, because level assignment is part
// of the pipeline's output contract.
type Clusterer interface {
	Cluster(values []float64, k int) []int
}

// KMeans is a deterministic one-dimensional k-means. Instead of random
// centroid seeding it initializes centroids at evenly spaced quantiles of the
// distinct sorted values, so the same input always converges to the same
// labeling. When the input has fewer distinct values than k, the effective
// cluster count shrinks to match.
type KMeans struct {
	// MaxIterations bounds the Lloyd iterations; 0 means the default.
	MaxIterations int
}

const defaultMaxIterations = 100

// Cluster assigns each value a label in [0, effectiveK). Labels carry no
// ordering meaning; callers rank clusters themselves (e.g. by mean).
func (m *KMeans) Cluster(values []float64, k int) []int {
	if len(values) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}

	distinct := distinctSorted(values)
	if k > len(distinct) {
		k = len(distinct)
	}

	centroids := make([]float64, k)
	for i := range centroids {
		// Evenly spaced quantiles over the distinct values.
		pos := i * (len(distinct) - 1) / max(k-1, 1)
		centroids[i] = distinct[pos]
	}
	if k == 1 {
		centroids[0] = distinct[0]
	}

	maxIter := m.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	labels := make([]int, len(values))
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range values {
			l := nearest(centroids, v)
			if labels[i] != l {
				labels[i] = l
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([]float64, k)
		counts := make([]int, k)
		for i, v := range values {
			sums[labels[i]] += v
			counts[labels[i]]++
		}
		moved := false
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			mean := sums[c] / float64(counts[c])
			if mean != centroids[c] {
				centroids[c] = mean
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	return labels
}

// nearest picks the centroid closest to v, breaking ties toward the lower
// index so assignment stays deterministic.
func nearest(centroids []float64, v float64) int {
	best := 0
	bestDist := abs(v - centroids[0])
	for i := 1; i < len(centroids); i++ {
		d := abs(v - centroids[i])
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func distinctSorted(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	distinct := sorted[:1]
	for _, v := range sorted[1:] {
		if v != distinct[len(distinct)-1] {
			distinct = append(distinct, v)
		}
	}
	return distinct
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
