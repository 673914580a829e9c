package textutil

// Ternary returns a when cond holds, otherwise b. Both values are evaluated.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
