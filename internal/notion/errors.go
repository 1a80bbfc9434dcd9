package notion

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoDataSource is returned when the configured database exposes no
// data source to query.
var ErrNoDataSource = errors.New("notion: database has no data source")

// APIError is an error object returned by the API.
type APIError struct {
	// Status is the HTTP status carried by the error object.
	Status int `json:"status"`

	// Code is the machine-readable error code, e.g. "object_not_found".
	Code string `json:"code"`

	Message string `json:"message"`
}

func (err *APIError) Error() string {
	if err.Code == "" {
		return fmt.Sprintf("notion: HTTP %d: %s", err.Status, err.Message)
	}
	return fmt.Sprintf("notion: HTTP %d %s: %s", err.Status, err.Code, err.Message)
}

// IsNotFound reports whether err is an object_not_found response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && (apiError.Status == 404 || apiError.Code == "object_not_found")
}

// IsRateLimited reports whether err is a rate_limited response.
func IsRateLimited(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && (apiError.Status == 429 || apiError.Code == "rate_limited")
}

// CheckResponse returns an *APIError when raw is an error object. Any
// other body, including one that is not JSON at all, passes.
func CheckResponse(raw json.RawMessage) error {
	var marker struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &marker); err != nil || marker.Object != "error" {
		return nil
	}
	apiError := &APIError{}
	if err := json.Unmarshal(raw, apiError); err != nil {
		apiError.Message = string(raw)
	}
	return apiError
}
