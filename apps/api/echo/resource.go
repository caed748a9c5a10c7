package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/resource"
)

type resourceApi struct {
	conf     *core.Config
	svc      *resource.Service
	validate *validator.Validate
}

func registerResourceAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	conf *core.Config,
	validate *validator.Validate,
	svc *resource.Service,
) {
	api := resourceApi{conf: conf, svc: svc, validate: validate}

	rg := g.Group("/resources/:kind", append(authed, kindMiddleware())...)
	rg.GET("", api.query)
	rg.POST("", api.create)

	// detail endpoints
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
	rg.POST("/:id/approve", api.approve)
}

const contextEndpointKey = "endpoint"

// kindMiddleware resolves the :kind path param; unknown kinds are not found.
func kindMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ep, ok := resource.Lookup(ctx.Param("kind"))
			if !ok {
				return errHttpNotFound
			}
			ctx.Set(contextEndpointKey, ep)
			return next(ctx)
		}
	}
}

func contextEndpoint(ctx echo.Context) (resource.Endpoint, error) {
	if ep, ok := ctx.Get(contextEndpointKey).(resource.Endpoint); ok {
		return ep, nil
	}
	return nil, errHttpNotFound
}

// Handlers

func (api *resourceApi) query(ctx echo.Context) error {
	ep, err := contextEndpoint(ctx)
	if err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	q, err := bindListQuery(ctx, api.validate, api.conf.Listing)
	if err != nil {
		return err
	}

	listed, err := ep.List(ctx.Request().Context(), api.svc, sess.Token, q, nowFunc())
	if err != nil {
		return errors.Wrapf(err, "listing %s", ep.Name())
	}
	return ctx.JSON(http.StatusOK, listed.Page)
}

func (api *resourceApi) create(ctx echo.Context) error {
	ep, err := contextEndpoint(ctx)
	if err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	body, err := bindRawObject(ctx)
	if err != nil {
		return err
	}

	out, err := api.svc.Create(ctx.Request().Context(), sess.Token, ep, body)
	if err != nil {
		return errors.Wrapf(err, "creating %s", ep.Name())
	}
	return sendUpstreamObject(ctx, http.StatusCreated, out)
}

func (api *resourceApi) update(ctx echo.Context) error {
	ep, err := contextEndpoint(ctx)
	if err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	body, err := bindRawObject(ctx)
	if err != nil {
		return err
	}

	out, err := api.svc.Update(ctx.Request().Context(), sess.Token, ep, ctx.Param("id"), body)
	if err != nil {
		return errors.Wrapf(err, "updating %s", ep.Name())
	}
	return sendUpstreamObject(ctx, http.StatusOK, out)
}

func (api *resourceApi) destroy(ctx echo.Context) error {
	ep, err := contextEndpoint(ctx)
	if err != nil {
		return err
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	if err := api.svc.Delete(ctx.Request().Context(), sess.Token, ep, ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", ep.Name())
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resourceApi) approve(ctx echo.Context) error {
	ep, err := contextEndpoint(ctx)
	if err != nil {
		return err
	}
	if !ep.Approvable() {
		return errors.Wrap(resource.ErrNotApprovable, ep.Name())
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	var data ApproveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApproveRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	out, err := api.svc.Approve(ctx.Request().Context(), sess.Token, ep, ctx.Param("id"), *data.Approved)
	if err != nil {
		return errors.Wrapf(err, "approving %s", ep.Name())
	}
	return sendUpstreamObject(ctx, http.StatusOK, out)
}

func sendUpstreamObject(ctx echo.Context, code int, out []byte) error {
	if len(out) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSONBlob(code, out)
}

type ApproveRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}
