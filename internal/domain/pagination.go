package domain

// PaginationParams holds page-based listing parameters. Pages are 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of rows for the page.
func (p PaginationParams) Limit() int {
	return p.PageSize
}
