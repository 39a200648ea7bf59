package utils

import "golang.org/x/exp/constraints"

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// ArgMax returns the index of the first maximum, or -1 for an empty slice.
func ArgMax[T constraints.Ordered](slice []T) int {
	best := -1
	for i, v := range slice {
		if best == -1 || v > slice[best] {
			best = i
		}
	}
	return best
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean[T constraints.Integer | constraints.Float](slice []T) float64 {
	if len(slice) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range slice {
		sum += float64(v)
	}
	return sum / float64(len(slice))
}
