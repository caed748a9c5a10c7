package resource

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campusdesk/core"
)

// Query holds the params common to every list view.
// Kind-specific filters (eg. branch, min_price, approved) are read from Filters.
type Query struct {
	Search   string     `query:"search"`
	Range    string     `query:"range" validate:"omitempty,range_key"`
	Page     int        `query:"page" validate:"omitempty,min=1"`
	PageSize int        `query:"page_size" validate:"omitempty,min=1"`
	Ordering string     `query:"ordering"`
	College  string     `query:"college"`
	Refresh  bool       `query:"refresh"`
	Filters  url.Values `query:"-" validate:"-"`
}

// Clean trims the query and fills in the paging defaults.
func (q *Query) Clean(conf core.ListingConfig) {
	q.Search = strings.TrimSpace(q.Search)
	q.Range = strings.TrimSpace(q.Range)
	q.Ordering = strings.TrimSpace(q.Ordering)
	q.College = strings.TrimSpace(q.College)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = conf.DefaultPageSize
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
}

// Validate checks the query against its tags and the configured page size cap.
func (q Query) Validate(validate *validator.Validate, conf core.ListingConfig) error {
	if err := validate.Struct(q); err != nil {
		return err
	}
	if conf.MaxPageSize > 0 && q.PageSize > conf.MaxPageSize {
		return core.NewFieldError("page_size", "must be "+strconv.Itoa(conf.MaxPageSize)+" or less")
	}
	return nil
}

func (q Query) filter(param string) string {
	if q.Filters == nil {
		return ""
	}
	return strings.TrimSpace(q.Filters.Get(param))
}
