package shared

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// Pagination bounds a listing query.
type Pagination struct {
	Limit  int
	Offset int
}

// NewPagination clamps a requested window. A missing limit means
// DefaultPageSize; larger requests are capped at MaxPageSize.
func NewPagination(limit, offset int) Pagination {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}
