package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/campusdesk/core/listing"
)

const dateLayout = "2006-01-02"

// DateRangeResponse is a range key resolved for today; Start and End are empty for "all".
type DateRangeResponse struct {
	Key   string `json:"key"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func registerDateRangeAPI(g *echo.Group, authed []echo.MiddlewareFunc) {
	g.GET("/date-ranges", queryDateRanges, authed...)
}

func queryDateRanges(ctx echo.Context) error {
	now := nowFunc()
	keys := listing.RangeKeys()
	ranges := make([]DateRangeResponse, 0, len(keys))
	for _, key := range keys {
		resp := DateRangeResponse{Key: key}
		if dr, ok := listing.ResolveRange(key, now); ok {
			resp.Start = dr.Start.Format(dateLayout)
			resp.End = dr.End.Format(dateLayout)
		}
		ranges = append(ranges, resp)
	}
	return ctx.JSON(http.StatusOK, ranges)
}
