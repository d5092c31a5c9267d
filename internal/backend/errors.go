package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnavailable marks transport-level failures (connection refused, timeouts, unreadable bodies).
var ErrUnavailable = errors.New("backend: unavailable")

// FieldError lists validation messages reported for one field, in response order.
type FieldError struct {
	Field    string
	Messages []string
}

// Error is a non-2xx response from the storefront API.
type Error struct {
	Status int
	// Message is the response's "error" (or "message") field.
	Message string
	// Detail is the response's "detail" field.
	Detail string
	// Errors holds the "errors" object of a validation failure.
	Errors []FieldError
	// Fields holds top-level list-valued fields such as non_field_errors or username.
	Fields map[string][]string
	Body   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	text := e.Message
	if text == "" {
		text = e.Detail
	}
	if text == "" {
		text = strings.TrimSpace(e.Body)
	}
	if text == "" {
		text = http.StatusText(e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, text)
}

// FirstField returns the first message recorded for a top-level field.
func (e *Error) FirstField(name string) string {
	if e == nil {
		return ""
	}
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ValidationMessages flattens the "errors" object in response order.
func (e *Error) ValidationMessages() []string {
	if e == nil {
		return nil
	}
	var out []string
	for _, fe := range e.Errors {
		out = append(out, fe.Messages...)
	}
	return out
}

// AsError unwraps err into *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is a backend response with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == status
}

// IsUnauthorized reports a 401 response.
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// IsForbidden reports a 403 response.
func IsForbidden(err error) bool { return IsStatus(err, http.StatusForbidden) }

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// IsUnavailable reports a transport failure.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// MessageOr returns the backend "error" text, or fallback when absent.
func MessageOr(err error, fallback string) string {
	if apiErr, ok := AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return parseError(resp.StatusCode, body)
}

func parseError(status int, body []byte) *Error {
	apiErr := &Error{Status: status, Body: strings.TrimSpace(string(body))}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return apiErr
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			apiErr.Message = text
		}
		return apiErr
	case '{':
	default:
		return apiErr
	}

	fields, err := orderedObject(trimmed)
	if err != nil {
		return apiErr
	}
	for _, f := range fields {
		switch f.key {
		case "error", "message":
			if apiErr.Message == "" {
				apiErr.Message = stringValue(f.raw)
			}
		case "detail":
			apiErr.Detail = stringValue(f.raw)
		case "errors":
			apiErr.Errors = fieldErrors(f.raw)
		default:
			if msgs := stringList(f.raw); len(msgs) > 0 {
				if apiErr.Fields == nil {
					apiErr.Fields = map[string][]string{}
				}
				apiErr.Fields[f.key] = msgs
			}
		}
	}
	return apiErr
}

type rawField struct {
	key string
	raw json.RawMessage
}

// orderedObject decodes a JSON object keeping key order, which map decoding loses.
func orderedObject(data []byte) ([]rawField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("backend: expected object")
	}
	var out []rawField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("backend: expected object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, rawField{key: key, raw: raw})
	}
	return out, nil
}

func stringValue(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	if list := stringList(raw); len(list) > 0 {
		return strings.Join(list, ", ")
	}
	return ""
}

// stringList accepts ["a","b"], "a" or nested objects of lists and flattens them.
func stringList(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil && text != "" {
			return []string{text}
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		var out []string
		for _, item := range items {
			out = append(out, stringList(item)...)
		}
		return out
	case '{':
		var out []string
		for _, fe := range fieldErrors(trimmed) {
			out = append(out, fe.Messages...)
		}
		return out
	}
	return nil
}

func fieldErrors(raw json.RawMessage) []FieldError {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] != '{' {
		if msgs := stringList(trimmed); len(msgs) > 0 {
			return []FieldError{{Messages: msgs}}
		}
		return nil
	}
	fields, err := orderedObject(trimmed)
	if err != nil {
		return nil
	}
	out := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		if msgs := stringList(f.raw); len(msgs) > 0 {
			out = append(out, FieldError{Field: f.key, Messages: msgs})
		}
	}
	return out
}
