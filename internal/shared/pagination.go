package shared

const (
	// DefaultPageLimit is used when a listing request carries no limit.
	DefaultPageLimit = 50
	// MaxPageLimit caps the number of rows a listing may return.
	MaxPageLimit = 500
)

// Page contains metadata for offset paginated listings.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// NewPage normalises limit/offset and attaches the total row count.
func NewPage(limit, offset, total int) Page {
	limit, offset = ClampPage(limit, offset)
	return Page{Limit: limit, Offset: offset, Total: total}
}

// ClampPage applies defaults and bounds to raw paging parameters.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
