package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/resource"
	"github.com/trezcool/campusdesk/core/session"
	"github.com/trezcool/campusdesk/services/upstream"
)

var (
	errUnauthorized    = echo.NewHTTPError(http.StatusUnauthorized, "admin not authenticated")
	errSessionExpired  = echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	errRefreshExpired  = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound    = echo.NewHTTPError(http.StatusNotFound, "not found")
	errUpstreamExpired = echo.NewHTTPError(http.StatusUnauthorized, "upstream session expired, please log in again")
	errUpstreamDown    = echo.NewHTTPError(http.StatusBadGateway, "upstream API unavailable")
)

// mapDomainError turns the errors of our services into HTTP errors, or returns nil.
func mapDomainError(err error) *echo.HTTPError {
	switch origErr := errors.Cause(err).(type) {
	case *upstream.APIError:
		switch {
		case origErr.StatusCode == http.StatusUnauthorized:
			return errUpstreamExpired
		case origErr.StatusCode >= 400 && origErr.StatusCode < 500:
			return echo.NewHTTPError(origErr.StatusCode, origErr.Message)
		default:
			return errUpstreamDown
		}
	}

	switch errors.Cause(err) {
	case upstream.ErrUnavailable:
		return errUpstreamDown
	case session.ErrNotFound:
		return errUnauthorized
	case session.ErrExpired:
		return errSessionExpired
	case resource.ErrUnknownKind:
		return errHttpNotFound
	case resource.ErrNotApprovable:
		return echo.NewHTTPError(http.StatusBadRequest, resource.ErrNotApprovable.Error())
	}
	return nil
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		if herr := mapDomainError(err); herr != nil {
			err = errors.Wrap(herr, err.Error())
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
				args = append(args, sess)
			}
			logger.Error(msg, args...)
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
