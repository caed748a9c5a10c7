// Package resource describes the record kinds served by the upstream API and
// puts the listing pipeline in front of them.
package resource

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/listing"
)

// Resource describes one record kind: where the upstream serves it and
// which of its fields each list filter looks at.
type Resource[R any] struct {
	Kind          string
	Path          string // upstream collection path, eg. "/notes"
	CollegeScoped bool   // served as Path + "/{college}" when a college is given
	CanApprove    bool

	Text      []func(R) string
	Exact     map[string]func(R) (string, bool)  // query param -> field
	Min       map[string]func(R) (float64, bool) // query param -> field
	Flags     map[string]func(R) bool            // query param -> field
	Date      func(R) string
	Orderings map[string]func(a, b R) int

	Columns []string
	Row     func(R) []string
}

// Endpoint is the kind-agnostic view of a Resource, used for routing and mutations.
type Endpoint interface {
	Name() string
	CollectionPath(college string) string
	ItemPath(id string) string
	Approvable() bool
	FilterParams() []string
	OrderingFields() []string
	List(ctx context.Context, svc *Service, token string, q Query, now time.Time) (Listed, error)
}

// Listed is a page of records, both JSON-ready and as table rows.
type Listed struct {
	Page    interface{} // listing.Page[R]
	Columns []string
	Rows    [][]string

	PageNum    int
	TotalItems int
	TotalPages int
	Controls   []listing.PageControl
}

var _ Endpoint = Resource[Note]{} // interface compliance check

func (res Resource[R]) Name() string     { return res.Kind }
func (res Resource[R]) Approvable() bool { return res.CanApprove }

func (res Resource[R]) CollectionPath(college string) string {
	if res.CollegeScoped && college != "" {
		return res.Path + "/" + url.PathEscape(college)
	}
	return res.Path
}

func (res Resource[R]) ItemPath(id string) string {
	return res.Path + "/" + url.PathEscape(id)
}

func (res Resource[R]) List(ctx context.Context, svc *Service, token string, q Query, now time.Time) (Listed, error) {
	page, err := List(ctx, svc, res, token, q, now)
	if err != nil {
		return Listed{}, err
	}
	rows := make([][]string, 0, len(page.Items))
	if res.Row != nil {
		for _, r := range page.Items {
			rows = append(rows, res.Row(r))
		}
	}
	return Listed{
		Page:       page,
		Columns:    res.Columns,
		Rows:       rows,
		PageNum:    page.Page,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Controls:   page.Controls,
	}, nil
}

// Spec builds the filter spec of a list query.
// Filter params this kind does not know are ignored; malformed values are validation errors.
func (res Resource[R]) Spec(q Query, now time.Time) (listing.Spec[R], error) {
	spec := listing.Spec[R]{Query: q.Search}
	if strings.TrimSpace(q.Search) != "" {
		spec.TextFields = res.Text
	}

	// sorted params: the first malformed one is the one reported
	for _, param := range res.FilterParams() {
		val := q.filter(param)
		if val == "" {
			continue
		}
		if field, ok := res.Exact[param]; ok {
			spec.Exact = append(spec.Exact, listing.Exact[R]{Field: field, Value: val})
		} else if field, ok := res.Min[param]; ok {
			threshold, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return listing.Spec[R]{}, core.NewFieldError(param, "must be a number")
			}
			spec.Min = append(spec.Min, listing.Min[R]{Field: field, Threshold: threshold})
		} else if field, ok := res.Flags[param]; ok {
			want, err := strconv.ParseBool(val)
			if err != nil {
				return listing.Spec[R]{}, core.NewFieldError(param, "must be true or false")
			}
			spec.Flags = append(spec.Flags, listing.Flag[R]{Field: field, Value: want})
		}
	}
	if res.Date != nil {
		spec.Date = listing.DateFilterFor(res.Date, q.Range, now)
	}
	return spec, nil
}

// FilterParams lists the kind-specific query params, sorted.
func (res Resource[R]) FilterParams() []string {
	params := make([]string, 0, len(res.Exact)+len(res.Min)+len(res.Flags))
	for p := range res.Exact {
		params = append(params, p)
	}
	for p := range res.Min {
		params = append(params, p)
	}
	for p := range res.Flags {
		params = append(params, p)
	}
	sort.Strings(params)
	return params
}

// OrderingFields lists the fields a list query may be ordered by, sorted.
func (res Resource[R]) OrderingFields() []string {
	fields := make([]string, 0, len(res.Orderings))
	for f := range res.Orderings {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
