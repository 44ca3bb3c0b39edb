package pkg

func Filter[T any](items []T, predicate func(T) bool) []T {
	filtered := []T{}
	for _, item := range items {
		if predicate(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Converts a value suspected to be either an int or float64 to an int.
// JSON decoding turns every number into a float64, so request data needs this all over.
func NumToInt(num any) int {
	switch num := num.(type) {
	case int:
		return num
	case int64:
		return int(num)
	case int32:
		return int(num)
	case float64:
		return int(num)
	case float32:
		return int(num)
	}
	return 0
}

// IsWholeNumber reports whether num is numeric with no fractional part.
func IsWholeNumber(num any) bool {
	switch num := num.(type) {
	case int, int64, int32:
		return true
	case float64:
		return num == float64(int64(num))
	case float32:
		return num == float32(int64(num))
	}
	return false
}
