package listing

import "fmt"

// DefaultMaxVisiblePages is the pager window used when none is given.
const DefaultMaxVisiblePages = 5

// ControlKind tells a pager token apart.
type ControlKind string

const (
	ControlPage     ControlKind = "page"
	ControlEllipsis ControlKind = "ellipsis"
)

// PageControl is one token of a pager widget: a page number or an ellipsis.
type PageControl struct {
	Kind   ControlKind `json:"kind"`
	Number int         `json:"number,omitempty"`
}

func pageToken(n int) PageControl { return PageControl{Kind: ControlPage, Number: n} }

var ellipsis = PageControl{Kind: ControlEllipsis}

// Page is one page of a filtered collection.
type Page[R any] struct {
	Items      []R           `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalItems int           `json:"total_items"`
	TotalPages int           `json:"total_pages"`
	Controls   []PageControl `json:"controls"`
}

func mustPageSize(pageSize int) {
	if pageSize <= 0 {
		panic(fmt.Sprintf("listing: non-positive page size %d", pageSize))
	}
}

// TotalPages returns ceil(totalItems / pageSize). It panics if pageSize <= 0.
func TotalPages(totalItems, pageSize int) int {
	mustPageSize(pageSize)
	if totalItems <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Slice returns the records shown on page (1-based).
// Pages out of range yield an empty slice. It panics if pageSize <= 0.
func Slice[R any](records []R, pageSize, page int) []R {
	mustPageSize(pageSize)
	if page < 1 {
		return []R{}
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []R{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	out := make([]R, end-start)
	copy(out, records[start:end])
	return out
}

// PageControls lays out the pager tokens for totalPages pages around currentPage.
//
// A window of maxVisible consecutive pages is centered on currentPage and
// shifted, never shrunk, when it runs off either end. Page 1 and the last page
// are always reachable, with an ellipsis standing in for any gap.
func PageControls(totalPages, currentPage, maxVisible int) []PageControl {
	if totalPages <= 0 {
		return []PageControl{}
	}
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisiblePages
	}
	if currentPage < 1 {
		currentPage = 1
	} else if currentPage > totalPages {
		currentPage = totalPages
	}

	start := currentPage - maxVisible/2
	end := start + maxVisible - 1
	if start < 1 {
		start, end = 1, maxVisible
	}
	if end > totalPages {
		end = totalPages
		start = end - maxVisible + 1
		if start < 1 {
			start = 1
		}
	}

	controls := make([]PageControl, 0, maxVisible+4)
	if start > 1 {
		controls = append(controls, pageToken(1))
		if start > 2 {
			controls = append(controls, ellipsis)
		}
	}
	for n := start; n <= end; n++ {
		controls = append(controls, pageToken(n))
	}
	if end < totalPages {
		if end < totalPages-1 {
			controls = append(controls, ellipsis)
		}
		controls = append(controls, pageToken(totalPages))
	}
	return controls
}

// Paginate slices records for page and computes the pager around it.
func Paginate[R any](records []R, pageSize, page, maxVisible int) Page[R] {
	total := TotalPages(len(records), pageSize)
	return Page[R]{
		Items:      Slice(records, pageSize, page),
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(records),
		TotalPages: total,
		Controls:   PageControls(total, page, maxVisible),
	}
}
