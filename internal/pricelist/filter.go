package pricelist

// FilterFunc returns true when a value should be kept.
type FilterFunc func(int) bool

// FitsDigits keeps values that can be typed into a buffer of maxDigits digits.
func FitsDigits(maxDigits int) FilterFunc {
	limit := 1
	for i := 0; i < maxDigits; i++ {
		limit *= 10
	}
	return func(v int) bool {
		return v >= 0 && v < limit
	}
}

// Filter keeps the first occurrence of each value that fits in maxDigits.
func Filter(values []int, maxDigits int) []int {
	keep := FitsDigits(maxDigits)
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if !keep(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
