package repository

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Pages returns how many pages the result spans for the given page size.
func (r *PageResult[T]) Pages(limit int) int {
	if limit <= 0 {
		return 0
	}
	return (r.Total + limit - 1) / limit
}
