package shared

// MaxPageSize bounds page_size for paginated listings
const MaxPageSize = 200

// PageRequest is a 1-based page window
type PageRequest struct {
	Page     int
	PageSize int
}

// Validate enforces page >= 1 and 1 <= page_size <= MaxPageSize
func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return InvalidParameterError("PAGE_OUT_OF_RANGE", "page must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return InvalidParameterError("PAGE_OUT_OF_RANGE", "page_size must be between 1 and 200")
	}
	return nil
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Window is a limit/offset listing window used by the simpler list endpoints
type Window struct {
	Limit  int
	Offset int
}

// Normalize clamps the window to sane bounds, defaulting Limit to 50
func (w Window) Normalize() Window {
	if w.Limit <= 0 {
		w.Limit = 50
	}
	if w.Limit > MaxPageSize {
		w.Limit = MaxPageSize
	}
	if w.Offset < 0 {
		w.Offset = 0
	}
	return w
}
