// Package service keeps one observable cache per resource type in sync with
// the backend. Each service normalizes what the server returns and applies a
// fixed mutation policy: replace-all on load, append on create, patch on
// update and remove on delete. Transport errors are returned unchanged and a
// failed call never touches the cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/cache"
	"github.com/tgienger/teamboard/internal/logger"
)

var (
	// ErrSuperseded is returned by a load whose response arrived after a
	// newer load had been issued. The cache keeps the newer data.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrNotCached is returned by an update that succeeded on the server for
	// an item the cache does not hold, when the response is too partial to
	// build a view model from.
	ErrNotCached = errors.New("updated item is not cached")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// resource is the shared load/create/update/delete core. T is the view model,
// R the server record it is normalized from.
type resource[T any, R any] struct {
	name      string
	path      string
	doer      api.Doer
	cache     *cache.Cache[T]
	normalize func(R) (T, error)

	// applyMu serializes the stale check with the cache swap
	applyMu sync.Mutex
	loadSeq uint64
}

func newResource[T any, R any](name, path string, doer api.Doer, idOf func(T) int64, normalize func(R) (T, error)) *resource[T, R] {
	return &resource[T, R]{
		name:      name,
		path:      path,
		doer:      doer,
		cache:     cache.New(idOf),
		normalize: normalize,
	}
}

// load fetches the collection and replaces the cache with it. apply runs
// under the same lock as the swap, for secondary indexes.
func (r *resource[T, R]) load(ctx context.Context, query url.Values, apply func([]T)) ([]T, error) {
	r.applyMu.Lock()
	r.loadSeq++
	token := r.loadSeq
	r.applyMu.Unlock()

	r.cache.SetLoading(true)

	var recs []R
	err := r.doer.Do(ctx, http.MethodGet, r.path, query, nil, &recs)

	var items []T
	if err == nil {
		items, err = r.normalizeAll(recs)
	}

	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	if token != r.loadSeq {
		logger.Debug("discard stale %s load %d (latest %d)", r.name, token, r.loadSeq)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSuperseded, err)
		}
		return nil, ErrSuperseded
	}
	if err != nil {
		r.cache.SetLoading(false)
		return nil, err
	}

	r.cache.ReplaceAll(items)
	if apply != nil {
		apply(items)
	}
	r.cache.SetLoading(false)
	logger.Debug("loaded %d %s", len(items), r.name)
	return items, nil
}

func (r *resource[T, R]) normalizeAll(recs []R) ([]T, error) {
	items := make([]T, 0, len(recs))
	for i, rec := range recs {
		item, err := r.normalize(rec)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", r.name, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// create posts body as-is and appends the normalized result. before runs on
// the raw record ahead of normalization.
func (r *resource[T, R]) create(ctx context.Context, body any, before func(R)) (T, error) {
	var zero T
	if err := validate.Struct(body); err != nil {
		return zero, err
	}

	var rec R
	if err := r.doer.Do(ctx, http.MethodPost, r.path, nil, body, &rec); err != nil {
		return zero, err
	}
	if before != nil {
		before(rec)
	}

	item, err := r.normalize(rec)
	if err != nil {
		return zero, fmt.Errorf("%s create response: %w", r.name, err)
	}

	if err := r.cache.Append(item); errors.Is(err, cache.ErrDuplicateID) {
		// A load that finished after the server committed already picked it up.
		logger.Warn("created %s %d was already cached; refreshing entry", r.name, r.cache.IDOf(item))
		r.cache.Patch(r.cache.IDOf(item), func(t *T) { *t = item })
	}
	return item, nil
}

// update sends a partial PATCH and merges the outcome into the cached item.
// reqRec is the request expressed as a record; fields present in the
// response win over it.
func (r *resource[T, R]) update(ctx context.Context, id int64, body any, reqRec R, merge func(*T, R) error) (T, error) {
	var zero T
	if err := validate.Struct(body); err != nil {
		return zero, err
	}

	var resp R
	if err := r.doer.Do(ctx, http.MethodPatch, api.ItemPath(r.path, id), nil, body, &resp); err != nil {
		return zero, err
	}
	rec := overlay(reqRec, resp)

	cur, ok := r.cache.Get(id)
	if !ok {
		return r.uncached(id, resp)
	}

	check := cur
	if err := merge(&check, rec); err != nil {
		return zero, fmt.Errorf("%s update response: %w", r.name, err)
	}

	item, ok := r.cache.Patch(id, func(t *T) { _ = merge(t, rec) })
	if !ok {
		// Removed by a concurrent delete or load while the request was in flight.
		return r.uncached(id, resp)
	}
	return item, nil
}

// uncached normalizes an update response for an item the cache does not hold
func (r *resource[T, R]) uncached(id int64, resp R) (T, error) {
	item, err := r.normalize(resp)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", r.name, id, ErrNotCached)
	}
	return item, nil
}

// overlay copies every non-nil pointer or slice field of top onto base
func overlay[R any](base, top R) R {
	out := base
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(top)
	for i := 0; i < src.NumField(); i++ {
		f := src.Field(i)
		switch f.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map:
			if !f.IsNil() {
				dst.Field(i).Set(f)
			}
		}
	}
	return out
}

// remove deletes on the server, then from the cache
func (r *resource[T, R]) remove(ctx context.Context, id int64) error {
	if err := r.doer.Do(ctx, http.MethodDelete, api.ItemPath(r.path, id), nil, nil, nil); err != nil {
		return err
	}
	r.cache.Remove(id)
	return nil
}
