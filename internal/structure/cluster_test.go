package structure

import (
	"reflect"
	"testing"
)

func TestKMeansEmptyInput(t *testing.T) {
	km := &KMeans{}
	if got := km.Cluster(nil, 4); got != nil {
		t.Errorf("Cluster(nil) = %v, want nil", got)
	}
}

func TestKMeansDeterminism(t *testing.T) {
	km := &KMeans{}
	values := []float64{12, 48, 11, 24, 47, 12, 25, 11, 48, 24}

	first := km.Cluster(values, 4)
	for i := 0; i < 10; i++ {
		if got := km.Cluster(values, 4); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}

func TestKMeansAllEqualHeights(t *testing.T) {
	km := &KMeans{}
	values := []float64{15, 15, 15, 15}

	labels := km.Cluster(values, 4)
	if len(labels) != len(values) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(values))
	}
	for i, l := range labels {
		if l != 0 {
			t.Errorf("labels[%d] = %d, want 0 (single degenerate cluster)", i, l)
		}
	}
}

func TestKMeansFewerDistinctThanK(t *testing.T) {
	km := &KMeans{}
	values := []float64{10, 40, 10, 40, 10}

	labels := km.Cluster(values, 4)
	if len(labels) != len(values) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(values))
	}
	// Two distinct heights must land in exactly two clusters, consistently.
	if labels[0] != labels[2] || labels[0] != labels[4] {
		t.Errorf("equal values got different labels: %v", labels)
	}
	if labels[1] != labels[3] {
		t.Errorf("equal values got different labels: %v", labels)
	}
	if labels[0] == labels[1] {
		t.Errorf("distinct values 10 and 40 share label: %v", labels)
	}
}

func TestKMeansSeparatesObviousGroups(t *testing.T) {
	km := &KMeans{}
	// Three well-separated height bands.
	values := []float64{60, 61, 59, 30, 31, 29, 10, 11, 9}

	labels := km.Cluster(values, 3)

	groups := [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}
	for _, g := range groups {
		for _, i := range g[1:] {
			if labels[i] != labels[g[0]] {
				t.Errorf("indices %d and %d in the same band got labels %d and %d",
					g[0], i, labels[g[0]], labels[i])
			}
		}
	}
	if labels[0] == labels[3] || labels[3] == labels[6] || labels[0] == labels[6] {
		t.Errorf("bands not separated: %v", labels)
	}
}

// In one dimension, converged k-means clusters are intervals: if two values
// land in different clusters, every value in the taller cluster exceeds every
// value in the shorter one. This underpins the monotone level mapping.
func TestKMeansClustersAreIntervals(t *testing.T) {
	km := &KMeans{}
	values := []float64{8, 50, 12, 33, 9, 47, 30, 13, 52, 31}

	labels := km.Cluster(values, 3)

	minMax := map[int][2]float64{}
	for i, v := range values {
		mm, ok := minMax[labels[i]]
		if !ok {
			minMax[labels[i]] = [2]float64{v, v}
			continue
		}
		if v < mm[0] {
			mm[0] = v
		}
		if v > mm[1] {
			mm[1] = v
		}
		minMax[labels[i]] = mm
	}

	for a, ra := range minMax {
		for b, rb := range minMax {
			if a == b {
				continue
			}
			// Ranges of distinct clusters must not interleave.
			if ra[0] < rb[0] && ra[1] > rb[0] {
				t.Errorf("cluster %d range %v overlaps cluster %d range %v", a, ra, b, rb)
			}
		}
	}
}
