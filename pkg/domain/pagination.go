package domain

import "math"

// TotalPages returns ceil(total/limit). A non-positive limit yields zero.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// OffsetFits reports whether the offset of page can be represented as an
// int for the given positive limit.
func OffsetFits(page, limit int) bool {
	if page < 1 || limit < 1 {
		return true
	}
	return page-1 <= math.MaxInt/limit
}

// Offset returns the row offset of a 1-based page. It saturates at
// math.MaxInt instead of wrapping.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	if !OffsetFits(page, limit) {
		return math.MaxInt
	}
	return (page - 1) * limit
}
