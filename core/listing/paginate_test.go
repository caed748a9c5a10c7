package listing

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// controlsString renders controls like "1 … 8 9 10 11 12 … 20".
func controlsString(controls []PageControl) string {
	parts := make([]string, 0, len(controls))
	for _, c := range controls {
		if c.Kind == ControlEllipsis {
			parts = append(parts, "…")
		} else {
			parts = append(parts, strconv.Itoa(c.Number))
		}
	}
	return strings.Join(parts, " ")
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
		{26, 5, 6},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestSlice(t *testing.T) {
	records := seq(5)

	tests := []struct {
		name     string
		records  []int
		pageSize int
		page     int
		want     []int
	}{
		{name: "first page", records: records, pageSize: 2, page: 1, want: []int{1, 2}},
		{name: "last partial page", records: records, pageSize: 2, page: 3, want: []int{5}},
		{name: "page past the end", records: records, pageSize: 10, page: 999, want: []int{}},
		{name: "page zero", records: records, pageSize: 2, page: 0, want: []int{}},
		{name: "negative page", records: records, pageSize: 2, page: -3, want: []int{}},
		{name: "empty collection", records: []int{}, pageSize: 10, page: 1, want: []int{}},
		{name: "nil collection", records: nil, pageSize: 10, page: 1, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slice(tt.records, tt.pageSize, tt.page))
		})
	}
}

func TestSlice_coversExactlyOnce(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 47} {
		for _, size := range []int{1, 3, 10} {
			records := seq(n)
			var joined []int
			for p := 1; p <= TotalPages(len(records), size); p++ {
				joined = append(joined, Slice(records, size, p)...)
			}
			if n == 0 {
				assert.Empty(t, joined)
				continue
			}
			assert.Equal(t, records, joined, "n=%d size=%d", n, size)
		}
	}
}

func TestSlice_doesNotAlias(t *testing.T) {
	records := seq(4)
	page := Slice(records, 2, 1)
	page[0] = 100
	assert.Equal(t, 1, records[0])
}

func TestNonPositivePageSizePanics(t *testing.T) {
	assert.Panics(t, func() { TotalPages(10, 0) })
	assert.Panics(t, func() { Slice(seq(3), -1, 1) })
}

func TestPageControls(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		current    int
		maxVisible int
		want       string
	}{
		{name: "no pages", total: 0, current: 1, maxVisible: 5, want: ""},
		{name: "single page", total: 1, current: 1, maxVisible: 5, want: "1"},
		{name: "fewer pages than window", total: 3, current: 2, maxVisible: 5, want: "1 2 3"},
		{name: "exactly the window", total: 5, current: 5, maxVisible: 5, want: "1 2 3 4 5"},
		{name: "middle", total: 20, current: 10, maxVisible: 5, want: "1 … 8 9 10 11 12 … 20"},
		{name: "start", total: 20, current: 1, maxVisible: 5, want: "1 2 3 4 5 … 20"},
		{name: "near start without gap", total: 20, current: 4, maxVisible: 5, want: "1 2 3 4 5 6 … 20"},
		{name: "end shifts window left", total: 20, current: 20, maxVisible: 5, want: "1 … 16 17 18 19 20"},
		{name: "near end without gap", total: 20, current: 17, maxVisible: 5, want: "1 … 15 16 17 18 19 20"},
		{name: "current past the end is clamped", total: 20, current: 99, maxVisible: 5, want: "1 … 16 17 18 19 20"},
		{name: "current before the start is clamped", total: 20, current: -4, maxVisible: 5, want: "1 2 3 4 5 … 20"},
		{name: "default window", total: 20, current: 10, maxVisible: 0, want: "1 … 8 9 10 11 12 … 20"},
		{name: "even window", total: 20, current: 10, maxVisible: 4, want: "1 … 8 9 10 11 … 20"},
		{name: "six pages at the end", total: 6, current: 6, maxVisible: 5, want: "1 2 3 4 5 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageControls(tt.total, tt.current, tt.maxVisible)
			assert.Equal(t, tt.want, controlsString(got))
			assert.NotNil(t, got)
		})
	}
}

func TestPaginate(t *testing.T) {
	page := Paginate(seq(23), 10, 3, 5)
	assert.Equal(t, []int{21, 22, 23}, page.Items)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 23, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "1 2 3", controlsString(page.Controls))

	empty := Paginate([]int{}, 10, 1, 5)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Items)
	assert.Empty(t, empty.Controls)
}
