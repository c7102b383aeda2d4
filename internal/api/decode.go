package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/landminer/internal/domain"
)

// decodeEnvelope unwraps {success, message, data}. Bodies that are not an
// envelope are returned whole as the payload.
func decodeEnvelope(body []byte) (data json.RawMessage, message string, success bool, err error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, "", true, nil
	}
	if trimmed[0] != '{' {
		return trimmed, "", true, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	message = firstString(fields, "message", "detail", "error")
	success = true
	rawSuccess, hasSuccess := fields["success"]
	if hasSuccess {
		var b bool
		if json.Unmarshal(rawSuccess, &b) == nil {
			success = b
		}
	}
	if rawData, ok := fields["data"]; ok {
		return rawData, message, success, nil
	}
	if hasSuccess {
		return nil, message, success, nil
	}
	return trimmed, message, success, nil
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeList accepts a bare array or a paginated {"results": [...]} object.
// A null payload decodes to a nil slice.
func decodeList[T any](data json.RawMessage) ([]T, error) {
	if isNull(data) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '{' {
		var page struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if isNull(page.Results) {
			return []T{}, nil
		}
		trimmed = page.Results
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return out, nil
}

// decodeOutcome turns an action payload into an Outcome. An absent or null
// payload is an empty outcome, not an error.
func decodeOutcome[T any](data json.RawMessage, message string) (domain.Outcome[T], error) {
	if isNull(data) {
		return domain.Outcome[T]{Message: message}, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return domain.Outcome[T]{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return domain.Outcome[T]{Data: &v, Message: message}, nil
}
