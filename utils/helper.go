package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	return validate
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["error"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// returns the pointed value or the zero value for nil
func DereferencePtr[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// returns slice removing duplicate elements
func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			// if not exists in map, append it, otherwise do nothing
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// ParseDateTime accepts operator-entered times in any common layout
// ("2024-03-05 20:00", "03/05/2024 8pm", RFC3339, unix seconds).
// Times without a zone are read in loc (UTC when nil).
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		return time.Time{}, errors.New("invalid date: " + value)
	}
	return t, nil
}

// ParseDateRange parses optional from/to filter values; a blank value stays nil.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var fromPtr, toPtr *time.Time
	if strings.TrimSpace(from) != "" {
		t, err := ParseDateTime(from, nil)
		if err != nil {
			return nil, nil, err
		}
		fromPtr = &t
	}
	if strings.TrimSpace(to) != "" {
		t, err := ParseDateTime(to, nil)
		if err != nil {
			return nil, nil, err
		}
		toPtr = &t
	}
	if fromPtr != nil && toPtr != nil && toPtr.Before(*fromPtr) {
		return nil, nil, errors.New("invalid date range")
	}
	return fromPtr, toPtr, nil
}

// SortClause maps a "name" / "-name" sort parameter onto an ORDER BY clause.
// Only keys present in allowed are accepted; the default is returned otherwise.
func SortClause(sort string, allowed map[string]string, def string) string {
	desc := strings.HasPrefix(sort, "-")
	key := strings.TrimPrefix(sort, "-")
	column, ok := allowed[key]
	if !ok {
		return def
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}
