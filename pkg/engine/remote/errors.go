package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rhuss/procunit/pkg/api"
)

// Error codes attached to engine_error APIErrors.
const (
	CodeUnavailable  = "backend_unavailable"
	CodeRejected     = "backend_rejected"
	CodeUnauthorized = "backend_unauthorized"
	CodeServerError  = "backend_error"
	CodeBadResponse  = "backend_bad_response"
)

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// mapHTTPError converts a non-2xx response into an engine_error APIError.
func mapHTTPError(resp *http.Response) *api.APIError {
	message := extractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if message == "" {
			message = "engine rejected the request"
		}
		return api.NewEngineError(CodeRejected, message)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "engine authentication failed"
		}
		return api.NewEngineError(CodeUnauthorized, message)

	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = fmt.Sprintf("engine unavailable (HTTP %d)", resp.StatusCode)
		}
		return api.NewEngineError(CodeUnavailable, message)

	default:
		if message == "" {
			message = fmt.Sprintf("engine error (HTTP %d)", resp.StatusCode)
		}
		return api.NewEngineError(CodeServerError, message)
	}
}

// mapNetworkError converts a transport failure (refused connection,
// timeout, DNS) into an engine_error APIError.
func mapNetworkError(err error) *api.APIError {
	return api.NewEngineError(CodeUnavailable, fmt.Sprintf("engine connection error: %s", err.Error()))
}

func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return ""
}
