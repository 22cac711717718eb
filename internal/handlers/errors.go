package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorDetail is the machine-readable part of an error response
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorBody is the body of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ListBody carries the result of a fan-out read. Elements that could not be
// resolved are left out of Data and described in Errors.
type ListBody struct {
	Data   any           `json:"data"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// ErrorRecorder counts typed errors returned to callers
type ErrorRecorder interface {
	RecordError(kind string)
}

// StatusOf maps an access-layer error kind to an HTTP status
func StatusOf(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidUserID, models.KindInvalidPostID, models.KindInvalidTopicName:
		return http.StatusNotFound
	case models.KindInvalidOperation:
		return http.StatusConflict
	case models.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler renders every error as an ErrorBody. Typed access errors
// keep their kind as the code; echo errors get a code derived from the status.
func NewErrorHandler(log *zap.Logger, rec ErrorRecorder) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, detail := describe(err)
		if rec != nil {
			var typed *models.Error
			if errors.As(err, &typed) {
				rec.RecordError(string(typed.Kind))
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, ErrorBody{Error: detail})
		}
		if werr != nil {
			log.Warn("failed to write error response", zap.Error(werr))
		}
	}
}

func describe(err error) (int, ErrorDetail) {
	var typed *models.Error
	if errors.As(err, &typed) {
		msg := typed.Message
		if msg == "" {
			msg = string(typed.Kind)
		}
		return StatusOf(typed.Kind), ErrorDetail{Code: string(typed.Kind), Message: msg}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorDetail{Code: codeOf(he.Code), Message: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, ErrorDetail{
		Code:    string(models.KindUnknown),
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

func codeOf(status int) string {
	if status == http.StatusUnauthorized {
		return string(models.KindUnauthenticated)
	}
	text := http.StatusText(status)
	if text == "" {
		return string(models.KindUnknown)
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}

// list writes the result of a fan-out read. A nil slice with an error means
// the read itself failed; a non-nil slice with an error is a partial result.
func list[T any](c echo.Context, data []T, err error) error {
	if err != nil && data == nil {
		return err
	}
	body := ListBody{Data: data}
	if err != nil {
		body.Errors = elementErrors(err)
	}
	return c.JSON(http.StatusOK, body)
}

// elementErrors splits a fan-out error into one detail per failed element.
func elementErrors(err error) []ErrorDetail {
	var typed *models.Error
	if !errors.As(err, &typed) {
		return []ErrorDetail{{Code: string(models.KindQueryFailed), Message: err.Error()}}
	}
	joined, ok := typed.Err.(interface{ Unwrap() []error })
	if !ok {
		return []ErrorDetail{{Code: string(typed.Kind), Message: typed.Message}}
	}
	var details []ErrorDetail
	for _, e := range joined.Unwrap() {
		code := models.KindOf(e)
		if code == models.KindUnknown {
			code = models.KindQueryFailed
		}
		details = append(details, ErrorDetail{Code: string(code), Message: e.Error()})
	}
	return details
}
