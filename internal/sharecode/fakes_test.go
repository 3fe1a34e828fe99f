package sharecode

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

type memStore struct {
	mu         sync.Mutex
	codes      map[string]model.ShareCode
	index      []model.ShareCodeIndexEntry
	deleteErrs   []error
	deletes      int
	incrementErr error
}

func newMemStore() *memStore { return &memStore{codes: map[string]model.ShareCode{}} }

func (m *memStore) Create(_ context.Context, sc model.ShareCode, lookup string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[sc.ID] = sc
	m.index = append(m.index, model.ShareCodeIndexEntry{LookupHash: lookup, OwnerID: sc.OwnerID, ShareCodeID: sc.ID})
	return nil
}

func (m *memStore) ActiveLookupExists(_ context.Context, lookup string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.index {
		if e.LookupHash == lookup && m.codes[e.ShareCodeID].Usable(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) FindByLookupHash(_ context.Context, lookup string) ([]model.ShareCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ShareCode
	for _, e := range m.index {
		if e.LookupHash == lookup {
			if sc, ok := m.codes[e.ShareCodeID]; ok {
				out = append(out, sc)
			}
		}
	}
	return out, nil
}

func (m *memStore) IncrementAccess(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrementErr != nil {
		return m.incrementErr
	}
	sc, ok := m.codes[id]
	if !ok {
		return ErrNotFound
	}
	sc.AccessCount++
	m.codes[id] = sc
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (model.ShareCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.codes[id]
	if !ok {
		return model.ShareCode{}, ErrNotFound
	}
	return sc, nil
}

func (m *memStore) ListByOwner(_ context.Context, owner uint64) ([]model.ShareCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ShareCode
	for _, sc := range m.codes {
		if sc.OwnerID == owner {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Update(_ context.Context, sc model.ShareCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[sc.ID] = sc
	return nil
}

func (m *memStore) owned(owner uint64, id string) error {
	sc, ok := m.codes[id]
	if !ok {
		return ErrNotFound
	}
	if sc.OwnerID != owner {
		return ErrForbidden
	}
	return nil
}

func (m *memStore) dropIndex(id string) {
	kept := m.index[:0]
	for _, e := range m.index {
		if e.ShareCodeID != id {
			kept = append(kept, e)
		}
	}
	m.index = kept
}

func (m *memStore) Deactivate(_ context.Context, owner uint64, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.owned(owner, id); err != nil {
		return err
	}
	sc := m.codes[id]
	sc.IsActive = false
	m.codes[id] = sc
	m.dropIndex(id)
	return nil
}

func (m *memStore) Delete(_ context.Context, owner uint64, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if len(m.deleteErrs) > 0 {
		err := m.deleteErrs[0]
		m.deleteErrs = m.deleteErrs[1:]
		return err
	}
	if err := m.owned(owner, id); err != nil {
		return err
	}
	delete(m.codes, id)
	m.dropIndex(id)
	return nil
}

func (m *memStore) indexRefs(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.index {
		if e.ShareCodeID == id {
			n++
		}
	}
	return n
}

// memLimiter mirrors the Redis lockout semantics without expiry.
type memLimiter struct {
	threshold int
	window    time.Duration
	fails     map[string]int
	locked    map[string]bool
	err       error
}

func newMemLimiter(threshold int) *memLimiter {
	return &memLimiter{threshold: threshold, window: 15 * time.Minute, fails: map[string]int{}, locked: map[string]bool{}}
}

func (l *memLimiter) Locked(_ context.Context, caller string) (time.Duration, error) {
	if l.err != nil {
		return 0, l.err
	}
	if l.locked[caller] {
		return l.window, nil
	}
	return 0, nil
}

func (l *memLimiter) Fail(_ context.Context, caller string) (time.Duration, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.fails[caller]++
	if l.fails[caller] >= l.threshold {
		l.locked[caller] = true
		l.fails[caller] = 0
		return l.window, nil
	}
	return 0, nil
}

func (l *memLimiter) Reset(_ context.Context, caller string) error {
	l.fails[caller] = 0
	return l.err
}

type memDocs struct{ docs []model.Document }

func (d *memDocs) ListByOwnerAndCategories(_ context.Context, owner uint64, cats []string) ([]model.Document, error) {
	var out []model.Document
	for _, doc := range d.docs {
		if doc.OwnerID == owner && contains(cats, doc.Category) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (d *memDocs) Get(_ context.Context, id string) (model.Document, error) {
	for _, doc := range d.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return model.Document{}, ErrNotFound
}

type recPublisher struct {
	entries []model.AccessLog
	err     error
}

func (p *recPublisher) PublishAccess(_ context.Context, e model.AccessLog) error {
	if p.err != nil {
		return p.err
	}
	p.entries = append(p.entries, e)
	return nil
}

var errTransient = errors.New("deadlock found when trying to get lock")
