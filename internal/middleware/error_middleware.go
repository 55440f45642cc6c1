package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/web/internal/pkg/apperrors"
)

// ErrorPage is the template rendered by HandleWebError
const ErrorPage = "error.html"

// ErrorView is the data of the error page
type ErrorView struct {
	Status  int
	Title   string
	Message string
}

// StatusFor maps an error onto an HTTP status
func StatusFor(err error) int {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.StatusCode != 0 {
		return custom.StatusCode
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, apperrors.ErrYearNotEligible), errors.Is(err, apperrors.ErrInvalidSemester):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrBackendUnavailable), errors.Is(err, apperrors.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleWebError logs err and renders the error page. Internal details are
// never shown; only CustomError messages reach the visitor.
func HandleWebError(c *gin.Context, err error) {
	status := StatusFor(err)
	_ = c.Error(err)

	evt := log.Warn()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).Str("path", c.Request.URL.Path).Str("request_id", c.GetString(KeyRequestID)).Msg("Request failed")

	c.HTML(status, ErrorPage, ErrorView{
		Status:  status,
		Title:   http.StatusText(status),
		Message: apperrors.UserMessage(err, "Something went wrong. Please try again later."),
	})
	c.Abort()
}

// NotFound renders the error page for unknown routes
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleWebError(c, apperrors.NewCustomError(apperrors.ErrResourceNotFound, "We could not find that page.").WithStatus(http.StatusNotFound))
	}
}
