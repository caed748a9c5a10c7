package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/listing"
	"github.com/trezcool/campusdesk/tests"
)

type call struct {
	Method, Path, Token string
	Body                string
}

// fakeFetcher serves canned JSON by path and records every call.
type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string]string
	calls []call
	err   error
}

func (f *fakeFetcher) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeFetcher) GetJSON(_ context.Context, token, path string, out interface{}) error {
	f.record(call{Method: http.MethodGet, Path: path, Token: token})
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.data[path]), out)
}

func (f *fakeFetcher) SendJSON(_ context.Context, token, method, path string, body, out interface{}) error {
	data, _ := json.Marshal(body)
	f.record(call{Method: method, Path: path, Token: token, Body: string(data)})
	if f.err != nil {
		return f.err
	}
	if out != nil {
		return json.Unmarshal([]byte(`{"_id":"x"}`), out)
	}
	return nil
}

func (f *fakeFetcher) gets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, c := range f.calls {
		if c.Method == http.MethodGet {
			n++
		}
	}
	return n
}

// mapCache is a minimal Cache.
type mapCache struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

func newMapCache() *mapCache { return &mapCache{snaps: make(map[string]Snapshot)} }

func (c *mapCache) Load(key string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.snaps[key]
	return s, ok
}

func (c *mapCache) Store(key string, snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[key] = snap
}

func (c *mapCache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for k := range c.snaps {
		if strings.HasPrefix(k, prefix) {
			delete(c.snaps, k)
			n++
		}
	}
	return n
}

const notesJSON = `[
	{"_id":"n1","title":"Thermodynamics","owner":{"_id":"u1","name":"Ravi"},"branch":{"_id":"b1","name":"Mechanical"},
	 "semester":3,"views":120,"isApproved":true,"createdAt":"2024-03-09T10:00:00Z"},
	{"_id":"n2","title":"Fluid Mechanics","owner":{"_id":"u2","name":"Asha"},"branch":{"_id":"b1","name":"Mechanical"},
	 "semester":4,"views":40,"isApproved":false,"createdAt":"2024-02-20T10:00:00Z"},
	{"_id":"n3","title":"Data Structures","owner":null,"branch":{"_id":"b2","name":"CSE"},
	 "semester":3,"views":null,"isApproved":true,"createdAt":"2023-12-31T23:00:00Z"},
	{"_id":"n4","title":"Operating Systems","owner":{"_id":"u1","name":"Ravi"},"branch":null,
	 "semester":5,"views":300,"isApproved":false,"createdAt":"2024-03-10T08:00:00Z"}
]`

var listingConf = core.ListingConfig{
	DefaultPageSize: 2,
	MaxPageSize:     50,
	MaxVisiblePages: 5,
	SnapshotTTL:     time.Minute,
}

func newTestService(f Fetcher, c Cache) *Service {
	return NewService(listingConf, f, c, testutil.NewLogger())
}

func noteIDs(notes []Note) []string {
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestList(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{data: map[string]string{"/notes": notesJSON, "/notes/iit-b": notesJSON}}
	svc := newTestService(fetcher, nil)

	tests := []struct {
		name      string
		query     Query
		wantIDs   []string
		wantTotal int
		wantPages int
		wantErr   string
	}{
		{name: "first page by default", wantIDs: []string{"n1", "n2"}, wantTotal: 4, wantPages: 2},
		{name: "second page", query: Query{Page: 2}, wantIDs: []string{"n3", "n4"}, wantTotal: 4, wantPages: 2},
		{name: "page past the end", query: Query{Page: 9}, wantIDs: []string{}, wantTotal: 4, wantPages: 2},
		{name: "search owner", query: Query{Search: "RAVI", PageSize: 10}, wantIDs: []string{"n1", "n4"}, wantTotal: 2, wantPages: 1},
		{
			name:    "exact branch skips missing refs",
			query:   Query{PageSize: 10, Filters: url.Values{"branch": {"mechanical"}}},
			wantIDs: []string{"n1", "n2"}, wantTotal: 2, wantPages: 1,
		},
		{
			name:    "min views skips missing values",
			query:   Query{PageSize: 10, Filters: url.Values{"min_views": {"100"}}},
			wantIDs: []string{"n1", "n4"}, wantTotal: 2, wantPages: 1,
		},
		{
			name:    "approved flag",
			query:   Query{PageSize: 10, Filters: url.Values{"approved": {"false"}}},
			wantIDs: []string{"n2", "n4"}, wantTotal: 2, wantPages: 1,
		},
		{
			name:    "last 7 days",
			query:   Query{PageSize: 10, Range: "last7Days"},
			wantIDs: []string{"n1", "n4"}, wantTotal: 2, wantPages: 1,
		},
		{
			name:    "this year, by views",
			query:   Query{PageSize: 10, Range: "thisYear", Ordering: "-views"},
			wantIDs: []string{"n4", "n1", "n2"}, wantTotal: 3, wantPages: 1,
		},
		{
			name:    "filters are ANDed",
			query:   Query{PageSize: 10, Search: "o", Filters: url.Values{"semester": {"3"}, "approved": {"true"}}},
			wantIDs: []string{"n1"}, wantTotal: 1, wantPages: 1,
		},
		{
			name:    "college scoped",
			query:   Query{PageSize: 10, College: "iit-b", Ordering: "title"},
			wantIDs: []string{"n3", "n2", "n4", "n1"}, wantTotal: 4, wantPages: 1,
		},
		{name: "unknown ordering", query: Query{Ordering: "price"}, wantErr: "ordering"},
		{name: "bad number", query: Query{Filters: url.Values{"min_views": {"lots"}}}, wantErr: "min_views"},
		{name: "bad flag", query: Query{Filters: url.Values{"approved": {"maybe"}}}, wantErr: "approved"},
		{
			name:    "first bad param in name order",
			query:   Query{Filters: url.Values{"min_views": {"lots"}, "approved": {"maybe"}}},
			wantErr: "approved",
		},
		{
			name:    "college param as bound from the query string",
			query:   Query{PageSize: 10, College: "iit-b", Filters: url.Values{"college": {"iit-b"}}, Ordering: "title"},
			wantIDs: []string{"n3", "n2", "n4", "n1"}, wantTotal: 4, wantPages: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := List(context.Background(), svc, Notes, "tok", tt.query, now)
			if tt.wantErr != "" {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "got %v", err)
				require.Len(t, vErr.Fields, 1)
				assert.Equal(t, tt.wantErr, vErr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, noteIDs(page.Items))
			assert.Equal(t, tt.wantTotal, page.TotalItems)
			assert.Equal(t, tt.wantPages, page.TotalPages)
		})
	}

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	for _, c := range fetcher.calls {
		assert.Equal(t, "tok", c.Token)
	}
}

func TestList_collegeScoped(t *testing.T) {
	const branchesJSON = `[
		{"_id":"b1","name":"Mechanical","code":"ME","college":{"_id":"c1","name":"IIT Bombay"},"createdAt":"2024-01-05T10:00:00Z"},
		{"_id":"b2","name":"Computer Science","code":"CSE","college":{"_id":"c1","name":"IIT Bombay"},"createdAt":"2024-01-06T10:00:00Z"}
	]`
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{data: map[string]string{"/branches/c1": branchesJSON}}
	svc := newTestService(fetcher, nil)

	tests := []struct {
		name      string
		filters   url.Values
		wantTotal int
	}{
		{name: "college param only scopes the fetch", filters: url.Values{"college": {"c1"}}, wantTotal: 2},
		{name: "college name matches", filters: url.Values{"college": {"c1"}, "college_name": {"iit bombay"}}, wantTotal: 2},
		{name: "college name mismatch", filters: url.Values{"college": {"c1"}, "college_name": {"nit trichy"}}, wantTotal: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Query{PageSize: 10, College: "c1", Filters: tt.filters}
			page, err := List(context.Background(), svc, Branches, "tok", q, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, page.TotalItems)
		})
	}

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	for _, c := range fetcher.calls {
		assert.Equal(t, "/branches/c1", c.Path)
	}
}

func TestList_snapshots(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{data: map[string]string{"/notes": notesJSON, "/notes/iit-b": "[]"}}
	cache := newMapCache()
	svc := newTestService(fetcher, cache)
	ctx := context.Background()

	list := func(q Query, at time.Time) listing.Page[Note] {
		page, err := List(ctx, svc, Notes, "tok", q, at)
		require.NoError(t, err)
		return page
	}

	list(Query{}, now)
	list(Query{Search: "thermo"}, now.Add(30*time.Second))
	assert.Equal(t, 1, fetcher.gets(), "fresh snapshot is reused")

	list(Query{}, now.Add(time.Minute))
	assert.Equal(t, 2, fetcher.gets(), "stale snapshot is refetched")

	list(Query{Refresh: true}, now.Add(time.Minute))
	assert.Equal(t, 3, fetcher.gets(), "refresh forces a fetch")

	page := list(Query{College: "iit-b"}, now.Add(time.Minute))
	assert.Equal(t, 4, fetcher.gets(), "colleges have their own snapshot")
	assert.Equal(t, 0, page.TotalItems)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, []Note{}, page.Items)

	_, err := svc.Update(ctx, "tok", Notes, "n1", json.RawMessage(`{"title":"Thermo II"}`))
	require.NoError(t, err)
	assert.Empty(t, cache.snaps, "mutations drop every snapshot of the kind")

	list(Query{}, now.Add(time.Minute))
	assert.Equal(t, 5, fetcher.gets())
}

func TestList_fetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	svc := newTestService(fetcher, newMapCache())

	_, err := List(context.Background(), svc, Users, "tok", Query{}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching users")
}

func TestService_mutations(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{}
	svc := newTestService(fetcher, newMapCache())

	_, err := svc.Create(ctx, "tok", Branches, json.RawMessage(`{"name":"Civil"}`))
	require.NoError(t, err)
	_, err = svc.Update(ctx, "tok", Products, "p/1", json.RawMessage(`{"price":10}`))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "tok", Seniors, "s1"))
	_, err = svc.Approve(ctx, "tok", PYQs, "q1", true)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "tok", Payments, "p1", true)
	assert.Equal(t, ErrNotApprovable, errors.Cause(err))

	assert.Equal(t, []call{
		{Method: http.MethodPost, Path: "/branches", Token: "tok", Body: `{"name":"Civil"}`},
		{Method: http.MethodPut, Path: "/products/p%2F1", Token: "tok", Body: `{"price":10}`},
		{Method: http.MethodDelete, Path: "/seniors/s1", Token: "tok", Body: "null"},
		{Method: http.MethodPut, Path: "/pyqs/q1", Token: "tok", Body: `{"isApproved":true}`},
	}, fetcher.calls)
}

func TestService_ListKind(t *testing.T) {
	fetcher := &fakeFetcher{data: map[string]string{
		"/products": `[{"_id":"p1","name":"Drafter","price":250,"seller":{"name":"Kiran"},"available":true,"createdAt":"2024-03-01T09:00:00Z"}]`,
	}}
	svc := newTestService(fetcher, nil)

	listed, err := svc.ListKind(context.Background(), KindProducts, "tok", Query{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, listed.TotalItems)
	assert.Equal(t, Products.Columns, listed.Columns)
	assert.Equal(t, [][]string{{"p1", "Drafter", "Kiran", "250", "yes", "no", "2024-03-01T09:00:00Z"}}, listed.Rows)
	_, ok := listed.Page.(listing.Page[Product])
	assert.True(t, ok)

	_, err = svc.ListKind(context.Background(), "lol", "tok", Query{}, time.Now())
	assert.Equal(t, ErrUnknownKind, errors.Cause(err))
}
