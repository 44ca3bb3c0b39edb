package query

// Window returns the slice of rows selected by offset and limit.
//
// Both at or below zero leave rows untouched. A limit at or below zero keeps everything after
// the offset, a negative offset counts as zero, and an offset past the end selects nothing.
// The result shares rows' backing array.
func Window[T any](rows []T, offset, limit int) []T {
	if offset <= 0 && limit <= 0 {
		return rows
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return rows[:0]
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}
