package dto

// Response wraps every successful payload
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// Page is a paginated list
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// OK wraps data in a success envelope
func OK(data any) Response {
	return Response{Success: true, Data: data}
}
