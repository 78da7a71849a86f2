package substack

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ma2za/substack.go/pkg/constants"
)

// APIError is returned for any response outside the 2xx range.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError(code=%d): %s", e.StatusCode, e.Message)
}

type apiErrorBody struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
	Error string `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &APIError{
			StatusCode: status,
			Message:    "Invalid JSON error message from Substack: " + string(body),
		}
	}
	msgs := make([]string, 0, len(parsed.Errors))
	for _, e := range parsed.Errors {
		msgs = append(msgs, e.Msg)
	}
	message := strings.Join(msgs, ", ")
	if message == "" {
		message = parsed.Error
	}
	return &APIError{StatusCode: status, Message: message}
}

// MalformedResponseError is returned when a successful response is not JSON.
type MalformedResponseError struct {
	Body string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: invalid response: %s", constants.ErrMalformedResponse, e.Body)
}

func (e *MalformedResponseError) Unwrap() error {
	return constants.ErrMalformedResponse
}
