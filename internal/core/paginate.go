package core

// Paginated is the single list-result shape returned by every listing
// operation. Callers never receive a bare slice from a paginated query.
type Paginated[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// ClampPageBounds normalizes offset/limit to sane values.
func ClampPageBounds(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return offset, limit
}
