// Package listing holds the filtering, date bucketing and pagination pipeline
// shared by every list view of the dashboard.
//
// Records are opaque: filters only ever look at them through the accessor
// functions given in a Spec, and never modify them.
package listing

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidSpec is returned by NewPipeline for a malformed Spec.
var ErrInvalidSpec = errors.New("invalid filter spec")

type (
	// Exact matches a field case-insensitively against Value.
	// Field returns ok == false when the value is missing (eg. a deleted reference).
	Exact[R any] struct {
		Field func(R) (value string, ok bool)
		Value string
	}

	// Min keeps records whose numeric field is >= Threshold.
	Min[R any] struct {
		Field     func(R) (value float64, ok bool)
		Threshold float64
	}

	// Flag matches a boolean field against Value.
	Flag[R any] struct {
		Field func(R) bool
		Value bool
	}

	// DateFilter keeps records whose timestamp falls on a day of Range.
	DateFilter[R any] struct {
		Field func(R) string // ISO-8601 timestamp
		Range DateRange
	}

	// Spec describes the active predicates of a list view.
	// The zero Spec matches every record.
	Spec[R any] struct {
		Query      string
		TextFields []func(R) string
		Exact      []Exact[R]
		Min        []Min[R]
		Flags      []Flag[R]
		Date       *DateFilter[R]
	}
)

type predicate[R any] func(R) bool

// Pipeline is a validated Spec, ready to be applied to any number of collections.
type Pipeline[R any] struct {
	preds []predicate[R]
}

// NewPipeline validates spec and compiles its active predicates.
// All predicates are ANDed; inactive ones (blank query, ...) are skipped.
func NewPipeline[R any](spec Spec[R]) (*Pipeline[R], error) {
	var preds []predicate[R]

	if query := strings.ToLower(strings.TrimSpace(spec.Query)); query != "" {
		if len(spec.TextFields) == 0 {
			return nil, errors.Wrap(ErrInvalidSpec, "text query without text fields")
		}
		for _, fn := range spec.TextFields {
			if fn == nil {
				return nil, errors.Wrap(ErrInvalidSpec, "nil text field")
			}
		}
		fields := spec.TextFields
		preds = append(preds, func(r R) bool {
			for _, field := range fields {
				if strings.Contains(strings.ToLower(field(r)), query) {
					return true
				}
			}
			return false
		})
	}

	for _, ex := range spec.Exact {
		if ex.Field == nil {
			return nil, errors.Wrap(ErrInvalidSpec, "nil exact-match field")
		}
		want := strings.TrimSpace(ex.Value)
		if want == "" {
			continue
		}
		field := ex.Field
		preds = append(preds, func(r R) bool {
			v, ok := field(r)
			return ok && strings.EqualFold(strings.TrimSpace(v), want)
		})
	}

	for _, m := range spec.Min {
		if m.Field == nil {
			return nil, errors.Wrap(ErrInvalidSpec, "nil numeric field")
		}
		field, threshold := m.Field, m.Threshold
		preds = append(preds, func(r R) bool {
			v, ok := field(r)
			return ok && v >= threshold
		})
	}

	for _, f := range spec.Flags {
		if f.Field == nil {
			return nil, errors.Wrap(ErrInvalidSpec, "nil flag field")
		}
		field, want := f.Field, f.Value
		preds = append(preds, func(r R) bool { return field(r) == want })
	}

	if spec.Date != nil {
		if spec.Date.Field == nil {
			return nil, errors.Wrap(ErrInvalidSpec, "nil date field")
		}
		dr := spec.Date.Range
		if dr.Start.After(dr.End) {
			return nil, errors.Wrap(ErrInvalidSpec, "date range starts after it ends")
		}
		field := spec.Date.Field
		loc := dr.Start.Location()
		preds = append(preds, func(r R) bool {
			t, ok := ParseTimestamp(field(r), loc)
			return ok && dr.Contains(t)
		})
	}

	return &Pipeline[R]{preds: preds}, nil
}

// Apply returns the records matching every predicate, in their original order.
// records is never modified; the result is always a new slice.
func (p *Pipeline[R]) Apply(records []R) []R {
	out := make([]R, 0, len(records))
next:
	for _, r := range records {
		for _, pred := range p.preds {
			if !pred(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Active returns the number of active predicates.
func (p *Pipeline[R]) Active() int { return len(p.preds) }

// Filter is a shorthand for NewPipeline(spec) followed by Apply(records).
func Filter[R any](records []R, spec Spec[R]) ([]R, error) {
	p, err := NewPipeline(spec)
	if err != nil {
		return nil, err
	}
	return p.Apply(records), nil
}

// DateFilterFor resolves key against now and returns the matching DateFilter,
// or nil when key does not constrain dates.
func DateFilterFor[R any](field func(R) string, key string, now time.Time) *DateFilter[R] {
	dr, ok := ResolveRange(key, now)
	if !ok {
		return nil
	}
	return &DateFilter[R]{Field: field, Range: dr}
}
