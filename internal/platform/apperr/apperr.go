// Package apperr defines the domain failure taxonomy shared by the account,
// scheduling and admin services, and its mapping onto HTTP responses.
//
// The message of every error is the exact text returned to API clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindValidation        Kind = "validation"
	KindInvalidTransition Kind = "invalid_transition"
)

// Error is a classified domain failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NotFound reports an unknown username or id.
func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

// Conflict reports a duplicate username or an already booked slot.
func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

// Validation reports a missing field, a wrong security answer or an unknown enum value.
func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

// Validationf is Validation with formatting.
func Validationf(format string, args ...interface{}) error {
	return Validation(fmt.Sprintf(format, args...))
}

// InvalidTransition reports an appointment status change the transition table forbids.
func InvalidTransition(from, to string) error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot change appointment status from %s to %s", from, to),
	}
}

// KindOf returns the kind of err, or "" when err is not a domain failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// Status maps err onto an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidTransition:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HTTPError converts err into an echo error. Domain failures keep their
// message verbatim; anything else becomes an opaque 500 with err attached
// as the internal cause for logging.
func HTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	status := Status(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, "internal server error").SetInternal(err)
	}
	return echo.NewHTTPError(status, err.Error())
}

// ErrorHandler renders every handler error as {"message": ...}.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		he := HTTPError(err)
		if he.Code >= http.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("request_id", fmt.Sprintf("%v", c.Get("request_id"))).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		msg := he.Message
		if _, ok := msg.(string); !ok {
			msg = http.StatusText(he.Code)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, map[string]interface{}{"message": msg})
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}
