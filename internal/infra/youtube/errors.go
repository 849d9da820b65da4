package youtube

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-200 response from the API.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube api %d %s: %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube api %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports an entity-not-found response, which the API returns for
// charts that do not exist for a region and category.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound ||
		strings.Contains(e.Message, "Requested entity was not found")
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		if len(parsed.Error.Errors) > 0 {
			apiErr.Reason = parsed.Error.Errors[0].Reason
		}
		return apiErr
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	apiErr.Message = msg
	return apiErr
}
