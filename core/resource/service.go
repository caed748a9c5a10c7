package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/listing"
)

var (
	ErrNotApprovable = errors.New("this kind of record cannot be approved")
	ErrUnknownKind   = errors.New("unknown kind")
)

type (
	// Fetcher talks to the upstream API on behalf of an admin session.
	Fetcher interface {
		GetJSON(ctx context.Context, token, path string, out interface{}) error
		SendJSON(ctx context.Context, token, method, path string, body, out interface{}) error
	}

	// Snapshot is a fetched collection, as kept by a Cache.
	Snapshot struct {
		Records   interface{} // []R
		FetchedAt time.Time
	}

	// Cache keeps the last fetched collection of each kind (and college).
	Cache interface {
		Load(key string) (Snapshot, bool)
		Store(key string, snap Snapshot)
		Invalidate(prefix string) int
	}
)

type Service struct {
	conf    core.ListingConfig
	fetcher Fetcher
	cache   Cache
	logger  core.Logger
}

// NewService returns a resource service. cache may be nil to always fetch.
func NewService(conf core.ListingConfig, fetcher Fetcher, cache Cache, logger core.Logger) *Service {
	return &Service{conf: conf, fetcher: fetcher, cache: cache, logger: logger}
}

func snapshotKey(kind, college string) string {
	return kind + "/" + college
}

// fetch returns the collection of res, from the cache while its snapshot is fresh.
func fetch[R any](ctx context.Context, svc *Service, res Resource[R], token, college string, refresh bool, now time.Time) ([]R, error) {
	if !res.CollegeScoped {
		college = ""
	}
	key := snapshotKey(res.Kind, college)
	if svc.cache != nil && !refresh {
		if snap, ok := svc.cache.Load(key); ok && now.Sub(snap.FetchedAt) < svc.conf.SnapshotTTL {
			if records, ok := snap.Records.([]R); ok {
				return records, nil
			}
		}
	}

	var records []R
	if err := svc.fetcher.GetJSON(ctx, token, res.CollectionPath(college), &records); err != nil {
		return nil, errors.Wrapf(err, "fetching %s", res.Kind)
	}
	if records == nil {
		records = []R{}
	}
	svc.logger.Debug("fetched "+res.Kind, map[string]interface{}{"college": college, "count": len(records)})
	if svc.cache != nil {
		svc.cache.Store(key, Snapshot{Records: records, FetchedAt: now})
	}
	return records, nil
}

// List runs a list query: fetch (or reuse) the collection, filter, order then paginate it.
func List[R any](ctx context.Context, svc *Service, res Resource[R], token string, q Query, now time.Time) (listing.Page[R], error) {
	q.Clean(svc.conf)

	spec, err := res.Spec(q, now)
	if err != nil {
		return listing.Page[R]{}, err
	}
	pipe, err := listing.NewPipeline(spec)
	if err != nil {
		return listing.Page[R]{}, errors.Wrap(err, res.Kind)
	}
	records, err := fetch(ctx, svc, res, token, q.College, q.Refresh, now)
	if err != nil {
		return listing.Page[R]{}, err
	}

	filtered := pipe.Apply(records)
	ordered, err := listing.Sort(filtered, listing.ParseOrderings(q.Ordering), res.Orderings)
	if err != nil {
		return listing.Page[R]{}, core.NewValidationError(err, core.FieldError{Field: "ordering", Error: err.Error()})
	}

	maxVisible := svc.conf.MaxVisiblePages
	if maxVisible < 1 {
		maxVisible = listing.DefaultMaxVisiblePages
	}
	return listing.Paginate(ordered, q.PageSize, q.Page, maxVisible), nil
}

// ListKind runs a list query for a kind given by name.
func (svc *Service) ListKind(ctx context.Context, kind, token string, q Query, now time.Time) (Listed, error) {
	ep, ok := Lookup(kind)
	if !ok {
		return Listed{}, errors.Wrap(ErrUnknownKind, kind)
	}
	return ep.List(ctx, svc, token, q, now)
}

// Create posts a new record of ep and returns the upstream's copy of it.
func (svc *Service) Create(ctx context.Context, token string, ep Endpoint, body json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	if err := svc.fetcher.SendJSON(ctx, token, http.MethodPost, ep.CollectionPath(""), body, &out); err != nil {
		return nil, errors.Wrapf(err, "creating %s", ep.Name())
	}
	svc.invalidate(ep)
	return out, nil
}

// Update replaces the fields in body on the record id of ep.
func (svc *Service) Update(ctx context.Context, token string, ep Endpoint, id string, body json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	if err := svc.fetcher.SendJSON(ctx, token, http.MethodPut, ep.ItemPath(id), body, &out); err != nil {
		return nil, errors.Wrapf(err, "updating %s %s", ep.Name(), id)
	}
	svc.invalidate(ep)
	return out, nil
}

func (svc *Service) Delete(ctx context.Context, token string, ep Endpoint, id string) error {
	if err := svc.fetcher.SendJSON(ctx, token, http.MethodDelete, ep.ItemPath(id), nil, nil); err != nil {
		return errors.Wrapf(err, "deleting %s %s", ep.Name(), id)
	}
	svc.invalidate(ep)
	return nil
}

// Approve sets the approval flag of the record id of ep.
func (svc *Service) Approve(ctx context.Context, token string, ep Endpoint, id string, approved bool) (json.RawMessage, error) {
	if !ep.Approvable() {
		return nil, errors.Wrap(ErrNotApprovable, ep.Name())
	}
	body := map[string]bool{"isApproved": approved}
	var out json.RawMessage
	if err := svc.fetcher.SendJSON(ctx, token, http.MethodPut, ep.ItemPath(id), body, &out); err != nil {
		return nil, errors.Wrapf(err, "approving %s %s", ep.Name(), id)
	}
	svc.invalidate(ep)
	return out, nil
}

// invalidate drops every snapshot of ep, whatever the college.
func (svc *Service) invalidate(ep Endpoint) {
	if svc.cache == nil {
		return
	}
	if n := svc.cache.Invalidate(ep.Name() + "/"); n > 0 {
		svc.logger.Debug("invalidated "+ep.Name()+" snapshots", map[string]interface{}{"count": n})
	}
}
