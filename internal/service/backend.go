package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gleam/dashboard/internal/dto"
)

// Backend is the part of upstream.Client the services depend on.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, token string, out interface{}) error
	Post(ctx context.Context, path, token string, body, out interface{}) error
	Put(ctx context.Context, path, token string, body, out interface{}) error
	Patch(ctx context.Context, path, token string, body, out interface{}) error
	Delete(ctx context.Context, path, token string) error
}

var ErrValidation = errors.New("validation failed")

// ValidationError carries per-field messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []dto.ErrorDetail
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, dto.ErrorDetail{Field: field, Message: message})
}

// err returns nil when nothing was added, so callers can return it unconditionally.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, message string) error {
	return &ValidationError{Fields: []dto.ErrorDetail{{Field: field, Message: message}}}
}

func pathf(format string, ids ...interface{}) string {
	escaped := make([]interface{}, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(fmt.Sprint(id))
	}
	return fmt.Sprintf(format, escaped...)
}
