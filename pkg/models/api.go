// pkg/models/api.go
package models

// Laravel-style validation error response
type ValidationErrorResponse struct {
	Message string              `json:"message" example:"Validation failed"`
	Errors  map[string][]string `json:"errors"`
}

// Generic error response (401/403/404/409/422/500)
type ErrorResponse struct {
	Error   bool   `json:"error" example:"true"`
	Message string `json:"message" example:"Forbidden"`
	Code    string `json:"code,omitempty" example:"FORBIDDEN"`
}

// Page is the paginated list envelope shared by list endpoints.
type Page[T any] struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	Pages    int   `json:"pages"`
	Items    []T   `json:"items"`
}
