package utils

// FindIndex returns the index of the first element equal to item, or -1.
func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Contains reports whether item is an element of slice.
func Contains[T comparable](slice []T, item T) bool {
	return FindIndex(slice, item) >= 0
}

// MaxIndex returns the index of the first maximum of score over slice, or -1
// for an empty slice.
func MaxIndex[T any](slice []T, score func(T) float64) int {
	best := -1
	bestScore := 0.0
	for i, v := range slice {
		if s := score(v); best < 0 || s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best
}
