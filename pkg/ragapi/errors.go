package ragapi

import (
	"encoding/json"
	"fmt"
	"io"
)

// APIError is a non-2xx reply from the RAG backend. Detail carries the
// backend's human-readable message when one was present.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

type errorBody struct {
	Detail string `json:"detail"`
	Err    string `json:"error"`
}

// decodeError builds an APIError from a failed response body. The
// backend is expected to send {"detail": ...} (FastAPI style) or
// {"error": ...}; anything else falls back to a status-coded message.
func decodeError(status int, body io.Reader) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Detail:     fmt.Sprintf("backend returned status %d", status),
	}

	raw, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return apiErr
	}
	if parsed.Detail != "" {
		apiErr.Detail = parsed.Detail
	} else if parsed.Err != "" {
		apiErr.Detail = parsed.Err
	}
	return apiErr
}
