package repository

import "github.com/Rrens/property-mcp/internal/domain"

// PageTotal turns a windowed count into the reported total. The count is only
// known when the page has rows; an empty first page means zero matches, an
// empty later page leaves the total unknown.
func PageTotal(rows int, windowCount int64, page domain.Page) *int64 {
	if rows > 0 {
		return &windowCount
	}
	if page.Offset == 0 {
		var zero int64
		return &zero
	}
	return nil
}
