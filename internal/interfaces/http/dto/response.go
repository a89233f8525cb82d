package dto

// Response is the envelope of every JSON body the API writes. Exactly one of
// Data and Error is set.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one rejected field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta describes the slice of a list a response holds. Paged lists (sales) fill
// Total and the page fields; windowed lists fill only Count, Limit and Offset.
type Meta struct {
	Total      int64 `json:"total,omitempty"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"page_size,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
	Count      int   `json:"count"`
	Limit      int   `json:"limit,omitempty"`
	Offset     int   `json:"offset"`
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps one page of a counted list
func NewSuccessResponseWithMeta(data any, count int, total int64, page, pageSize int) Response {
	m := &Meta{Total: total, Page: page, PageSize: pageSize, Count: count, Limit: pageSize}
	if pageSize > 0 {
		m.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
		m.Offset = (page - 1) * pageSize
	}
	return Response{Success: true, Data: data, Meta: m}
}

// NewWindowResponse wraps a limit/offset list that is not counted
func NewWindowResponse(data any, count, limit, offset int) Response {
	return Response{Success: true, Data: data, Meta: &Meta{Count: count, Limit: limit, Offset: offset}}
}

func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// NewValidationErrorResponse lists every rejected field under VALIDATION_ERROR
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
