package resource

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/campusdesk/core/listing"
)

// accessor helpers shared by the kind definitions

func refName(ref *Ref) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

func refText[R any](get func(R) *Ref) func(R) string {
	return func(r R) string { return refName(get(r)) }
}

func refField[R any](get func(R) *Ref) func(R) (string, bool) {
	return func(r R) (string, bool) {
		name := refName(get(r))
		return name, name != ""
	}
}

func stringField[R any](get func(R) string) func(R) (string, bool) {
	return func(r R) (string, bool) {
		s := get(r)
		return s, s != ""
	}
}

// intField treats 0 as missing; the upstream omits unset years and semesters.
func intField[R any](get func(R) int) func(R) (string, bool) {
	return func(r R) (string, bool) {
		n := get(r)
		if n == 0 {
			return "", false
		}
		return strconv.Itoa(n), true
	}
}

func floatPtrField[R any](get func(R) *float64) func(R) (float64, bool) {
	return func(r R) (float64, bool) {
		f := get(r)
		if f == nil {
			return 0, false
		}
		return *f, true
	}
}

func intPtrField[R any](get func(R) *int) func(R) (float64, bool) {
	return func(r R) (float64, bool) {
		n := get(r)
		if n == nil {
			return 0, false
		}
		return float64(*n), true
	}
}

// comparators

func byText[R any](get func(R) string) func(a, b R) int {
	return func(a, b R) int {
		return cmp.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}
}

func byInt[R any](get func(R) int) func(a, b R) int {
	return func(a, b R) int { return cmp.Compare(get(a), get(b)) }
}

// byNumber sorts missing values first.
func byNumber[R any](get func(R) (float64, bool)) func(a, b R) int {
	return func(a, b R) int {
		x, okx := get(a)
		y, oky := get(b)
		switch {
		case !okx && !oky:
			return 0
		case !okx:
			return -1
		case !oky:
			return 1
		}
		return cmp.Compare(x, y)
	}
}

func byFlag[R any](get func(R) bool) func(a, b R) int {
	return func(a, b R) int {
		x, y := get(a), get(b)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	}
}

// byTime sorts unparsable timestamps first.
func byTime[R any](get func(R) string) func(a, b R) int {
	return func(a, b R) int {
		x, okx := listing.ParseTimestamp(get(a), time.UTC)
		y, oky := listing.ParseTimestamp(get(b), time.UTC)
		switch {
		case !okx && !oky:
			return 0
		case !okx:
			return -1
		case !oky:
			return 1
		}
		return x.Compare(y)
	}
}

// formatting helpers for table rows

func fmtFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func fmtIntPtr(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func fmtInt(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func fmtRef(ref *Ref) string {
	if name := refName(ref); name != "" {
		return name
	}
	return "-"
}

func fmtBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
