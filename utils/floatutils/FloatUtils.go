// Package floatutils provides utilities for working with floats
package floatutils

// MaxSlice gets the maximum value and indices of the maximum values in
// a slice of float64.
func MaxSlice(values []float64) (max float64, indices []int) {
	max, indices = values[0], []int{0}

	for i, value := range values[1:] {
		if value > max {
			max = value
			indices = []int{i + 1}
		} else if value == max {
			indices = append(indices, i+1)
		}
	}
	return
}

// ArgMax returns the lowest index of the maximum value in values
func ArgMax(values ...float64) int {
	_, indices := MaxSlice(values)
	return indices[0]
}

// Ones returns a slice of n ones
func Ones(n int) []float64 {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1.0
	}
	return ones
}
