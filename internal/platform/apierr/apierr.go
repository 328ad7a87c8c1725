package apierr

import (
	"errors"
	"fmt"
	"net/http"

	perr "github.com/yungbote/cementplant-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From maps service errors onto an HTTP status. fallbackCode is used when err
// carries no sentinel the mapping knows.
func From(err error, fallbackCode string) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, perr.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, perr.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, perr.ErrBusy):
		return New(http.StatusConflict, "busy", err)
	case errors.Is(err, perr.ErrUnavailable):
		return New(http.StatusServiceUnavailable, "unavailable", err)
	}
	return New(http.StatusInternalServerError, fallbackCode, err)
}
