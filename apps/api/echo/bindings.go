package echoapi

import (
	"encoding/json"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/resource"
)

const maxBodySize = 1 << 20

var errInvalidBody = errors.New("request body must be a JSON object")

// bindListQuery binds, cleans and validates the query of a list view.
// Every query param is also kept as a potential kind-specific filter.
func bindListQuery(ctx echo.Context, validate *validator.Validate, conf core.ListingConfig) (resource.Query, error) {
	var q resource.Query
	if err := ctx.Bind(&q); err != nil {
		return q, errors.Wrap(err, "binding to Query")
	}
	q.Filters = ctx.QueryParams()
	q.Clean(conf)
	if err := q.Validate(validate, conf); err != nil {
		return q, err
	}
	return q, nil
}

// bindRawObject reads a JSON object body as is, to be forwarded upstream.
func bindRawObject(ctx echo.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "reading body")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, core.NewValidationError(errInvalidBody)
	}
	return json.RawMessage(body), nil
}
