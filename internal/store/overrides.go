package store

import (
	"context"
	"encoding/json"
	"maps"
	"strconv"
	"sync"

	"github.com/tgienger/teamboard/internal/logger"
)

// TeamDescriptionsKey is the single key holding every team description override
const TeamDescriptionsKey = "teamDescriptions"

// Overrides remembers user-entered team descriptions the server does not
// reliably return. Values are kept in memory and persisted as one JSON object
// mapping team id to description. Backend failures are logged and otherwise
// ignored: the worst case is a forgotten description.
//
// The persisted map is only written once it has been read successfully, so
// a failed read never overwrites descriptions stored for other teams.
type Overrides struct {
	kv  KV
	key string

	mu     sync.RWMutex
	m      map[int64]string
	loaded bool
}

// NewOverrides creates an override store on kv. Call Reload to read the
// persisted values.
func NewOverrides(kv KV) *Overrides {
	return &Overrides{kv: kv, key: TeamDescriptionsKey, m: make(map[int64]string)}
}

// Get returns the override for a team
func (o *Overrides) Get(teamID int64) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.m[teamID]
	return v, ok
}

// Reload replaces the in-memory values with the persisted ones. On failure
// the store ends up empty and stops persisting until a read succeeds.
func (o *Overrides) Reload(ctx context.Context) {
	stored, err := o.read(ctx)
	if err != nil {
		logger.Error("load team descriptions: %v", err)
		stored = make(map[int64]string)
	}

	o.mu.Lock()
	o.m = stored
	o.loaded = err == nil
	o.mu.Unlock()
}

// read returns the persisted map. A missing key is an empty map; an
// undecodable value is logged and treated as empty.
func (o *Overrides) read(ctx context.Context) (map[int64]string, error) {
	out := make(map[int64]string)
	if o.kv == nil {
		return out, nil
	}
	raw, ok, err := o.kv.Get(ctx, o.key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return out, nil
	}

	var stored map[string]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.Error("decode team descriptions: %v", err)
		return out, nil
	}
	for k, v := range stored {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			logger.Warn("skip team description with bad id %q", k)
			continue
		}
		out[id] = v
	}
	return out, nil
}

// Set records an override and persists the whole map. An empty value removes
// the override.
func (o *Overrides) Set(ctx context.Context, teamID int64, value string) {
	o.mutate(ctx, func(m map[int64]string) bool {
		if value == "" {
			if _, ok := m[teamID]; !ok {
				return false
			}
			delete(m, teamID)
			return true
		}
		m[teamID] = value
		return true
	})
}

// Forget drops the override for a deleted team
func (o *Overrides) Forget(ctx context.Context, teamID int64) {
	o.mutate(ctx, func(m map[int64]string) bool {
		if _, ok := m[teamID]; !ok {
			return false
		}
		delete(m, teamID)
		return true
	})
}

// mutate applies fn to the in-memory map and persists the result. If the
// persisted map is not known yet it is read first and merged under the
// in-memory values; when that read fails the change stays in memory only.
func (o *Overrides) mutate(ctx context.Context, fn func(map[int64]string) bool) {
	o.mu.RLock()
	loaded := o.loaded
	o.mu.RUnlock()

	var stored map[int64]string
	if !loaded {
		var err error
		if stored, err = o.read(ctx); err != nil {
			logger.Error("load team descriptions before save: %v", err)
		}
	}

	o.mu.Lock()
	if stored != nil && !o.loaded {
		maps.Copy(stored, o.m)
		o.m = stored
		o.loaded = true
	}
	changed := fn(o.m)
	loaded = o.loaded
	snapshot := maps.Clone(o.m)
	o.mu.Unlock()

	if !changed {
		return
	}
	if !loaded {
		logger.Warn("team descriptions not saved: stored values could not be read")
		return
	}
	o.save(ctx, snapshot)
}

func (o *Overrides) save(ctx context.Context, m map[int64]string) {
	if o.kv == nil {
		return
	}
	stored := make(map[string]string, len(m))
	for id, v := range m {
		stored[strconv.FormatInt(id, 10)] = v
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		logger.Error("encode team descriptions: %v", err)
		return
	}
	if err := o.kv.Set(ctx, o.key, string(raw)); err != nil {
		logger.Error("save team descriptions: %v", err)
	}
}
