package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gleam/dashboard/internal/dto"
)

// Error is a non-2xx answer (or no answer at all) from the GLEAM backend.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  []dto.ErrorDetail
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: %s (%d)", e.Code, e.Status)
	}
	return fmt.Sprintf("upstream: %s (%d): %s", e.Code, e.Status, e.Message)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Status == http.StatusNotFound
}

func unavailable(err error) *Error {
	return &Error{
		Status:  http.StatusBadGateway,
		Code:    "UPSTREAM_UNAVAILABLE",
		Message: err.Error(),
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	}
	if status >= 500 {
		return "UPSTREAM_ERROR"
	}
	return "UPSTREAM_REJECTED"
}

// errorBody covers the payload shapes the backend uses for failures:
// {"message": "..."}, {"errors": {"field": ["msg"]}} and {"detail": "..." | [{"loc": [...], "msg": "..."}]}.
type errorBody struct {
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
	Detail  json.RawMessage            `json:"detail"`
}

type detailItem struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

func parseError(status int, body []byte) *Error {
	e := &Error{Status: status, Code: codeFor(status)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		e.Message = strings.TrimSpace(string(body))
		if len(e.Message) > 200 {
			e.Message = e.Message[:200]
		}
		return e
	}

	e.Message = eb.Message
	if e.Message == "" {
		e.Message = eb.Error
	}

	// Stable order so the details list is deterministic.
	fields := make([]string, 0, len(eb.Errors))
	for field := range eb.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		raw := eb.Errors[field]
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err != nil {
			var single string
			if err := json.Unmarshal(raw, &single); err != nil {
				continue
			}
			msgs = []string{single}
		}
		for _, m := range msgs {
			e.Fields = append(e.Fields, dto.ErrorDetail{Field: field, Message: m})
		}
	}

	if len(eb.Detail) > 0 {
		var text string
		if err := json.Unmarshal(eb.Detail, &text); err == nil {
			if e.Message == "" {
				e.Message = text
			}
		} else {
			var items []detailItem
			if err := json.Unmarshal(eb.Detail, &items); err == nil {
				for _, it := range items {
					field := ""
					if n := len(it.Loc); n > 0 {
						field = fmt.Sprint(it.Loc[n-1])
					}
					e.Fields = append(e.Fields, dto.ErrorDetail{Field: field, Message: it.Msg})
				}
			}
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
