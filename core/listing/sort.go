package listing

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownOrdering is returned by Sort for a field without a comparator.
var ErrUnknownOrdering = errors.New("unknown ordering field")

// Ordering is one sort key, eg. "-created_at" is {Field: "created_at", Descending: true}.
type Ordering struct {
	Field      string
	Descending bool
}

func (ord Ordering) String() string {
	if ord.Descending {
		return "-" + ord.Field
	}
	return ord.Field
}

// ParseOrderings parses a comma separated list of fields, "-" prefixed fields sort descending.
func ParseOrderings(s string) []Ordering {
	var ords []Ordering
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = strings.TrimSpace(field[1:]) // drop "-"
		}
		if field == "" {
			continue
		}
		ords = append(ords, Ordering{Field: field, Descending: descending})
	}
	return ords
}

// Sort returns a stably sorted copy of records.
// cmps maps ordering fields to comparators returning <0, 0 or >0 as a sorts before, with or after b.
func Sort[R any](records []R, ords []Ordering, cmps map[string]func(a, b R) int) ([]R, error) {
	type key struct {
		cmp  func(a, b R) int
		desc bool
	}
	keys := make([]key, 0, len(ords))
	for _, ord := range ords {
		cmp, ok := cmps[ord.Field]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownOrdering, "%q", ord.Field)
		}
		keys = append(keys, key{cmp: cmp, desc: ord.Descending})
	}

	out := slices.Clone(records)
	if len(keys) == 0 {
		return out, nil
	}
	slices.SortStableFunc(out, func(a, b R) int {
		for _, k := range keys {
			c := k.cmp(a, b)
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out, nil
}
