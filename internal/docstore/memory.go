package docstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// NewMemory returns an in-process Store with the same read/write/watch
// semantics as the backend one. It backs tests and local runs without a
// configured project.
func NewMemory() Store {
	return &memStore{cols: map[string]*memCollection{}}
}

type memStore struct {
	mu   sync.Mutex
	cols map[string]*memCollection
}

func (s *memStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.cols[name]
	if !ok {
		col = &memCollection{
			docs:     map[string]Fields{},
			watchers: map[int]*memWatcher{},
		}
		s.cols[name] = col
	}
	return col
}

type memWatcher struct {
	cs    []Constraint
	docID string // set for single-document watchers
	fn    func([]Snapshot, error)
	docFn func(Snapshot, error)
}

type memCollection struct {
	mu       sync.Mutex
	docs     map[string]Fields
	seq      int
	nextSub  int
	watchers map[int]*memWatcher
}

func (c *memCollection) Doc(id string) Document {
	return &memDocument{col: c, id: id}
}

func (c *memCollection) NewDoc() Document {
	c.mu.Lock()
	c.seq++
	id := fmt.Sprintf("gen-%d", c.seq)
	c.mu.Unlock()
	return &memDocument{col: c, id: id}
}

func (c *memCollection) Query(_ context.Context, cs []Constraint) ([]Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runQuery(cs), nil
}

func (c *memCollection) Watch(ctx context.Context, cs []Constraint, fn func([]Snapshot, error)) func() {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.watchers[id] = &memWatcher{cs: cs, fn: fn}
	initial := c.runQuery(cs)
	c.mu.Unlock()

	// Initial snapshot, then one per mutation, in order.
	fn(initial, nil)

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			c.mu.Lock()
			delete(c.watchers, id)
			c.mu.Unlock()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	return stop
}

// WatcherCount reports the number of live listeners, for tests.
func (c *memCollection) WatcherCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.watchers)
}

func (c *memCollection) runQuery(cs []Constraint) []Snapshot {
	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []Snapshot{}
	for _, id := range ids {
		if matches(c.docs[id], cs) {
			out = append(out, Snapshot{ID: id, Exists: true, Data: cloneFields(c.docs[id])})
		}
	}
	// Stable sorts applied in reverse, so the first OrderBy is the primary
	// key, matching backend query semantics.
	var orderBys []Constraint
	for _, cn := range cs {
		if cn.kind == kindOrderBy {
			orderBys = append(orderBys, cn)
		}
	}
	for i := len(orderBys) - 1; i >= 0; i-- {
		field, desc := orderBys[i].Field, orderBys[i].Dir == Desc
		sort.SliceStable(out, func(i, j int) bool {
			less := compareValues(out[i].Data[field], out[j].Data[field]) < 0
			if desc {
				return !less && compareValues(out[i].Data[field], out[j].Data[field]) != 0
			}
			return less
		})
	}
	for _, cn := range cs {
		if cn.kind == kindLimit && len(out) > cn.N {
			out = out[:cn.N]
		}
	}
	return out
}

// notify re-runs every watcher's query against the new state and fans the
// snapshots out. Callbacks run outside the lock so a listener may
// unsubscribe from within its callback.
func (c *memCollection) notify() {
	c.mu.Lock()
	type delivery struct {
		w     *memWatcher
		snaps []Snapshot
		doc   Snapshot
	}
	var pending []delivery
	for _, w := range c.watchers {
		if w.docFn != nil {
			snap := Snapshot{ID: w.docID}
			if data, ok := c.docs[w.docID]; ok {
				snap.Exists = true
				snap.Data = cloneFields(data)
			}
			pending = append(pending, delivery{w: w, doc: snap})
			continue
		}
		pending = append(pending, delivery{w: w, snaps: c.runQuery(w.cs)})
	}
	c.mu.Unlock()
	for _, d := range pending {
		if d.w.docFn != nil {
			d.w.docFn(d.doc, nil)
			continue
		}
		d.w.fn(d.snaps, nil)
	}
}

type memDocument struct {
	col *memCollection
	id  string
}

func (d *memDocument) ID() string { return d.id }

func (d *memDocument) Get(_ context.Context) (Snapshot, error) {
	d.col.mu.Lock()
	defer d.col.mu.Unlock()
	data, ok := d.col.docs[d.id]
	if !ok {
		return Snapshot{ID: d.id}, nil
	}
	return Snapshot{ID: d.id, Exists: true, Data: cloneFields(data)}, nil
}

func (d *memDocument) Set(_ context.Context, fields Fields, merge bool) error {
	now := time.Now().UTC()
	d.col.mu.Lock()
	cur, exists := d.col.docs[d.id]
	next := Fields{}
	if merge && exists {
		next = cloneFields(cur)
	}
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			next[k] = now
			continue
		}
		next[k] = v
	}
	d.col.docs[d.id] = next
	d.col.mu.Unlock()
	d.col.notify()
	return nil
}

func (d *memDocument) Delete(_ context.Context) error {
	d.col.mu.Lock()
	delete(d.col.docs, d.id)
	d.col.mu.Unlock()
	d.col.notify()
	return nil
}

func (d *memDocument) Watch(ctx context.Context, fn func(Snapshot, error)) func() {
	d.col.mu.Lock()
	d.col.nextSub++
	id := d.col.nextSub
	d.col.watchers[id] = &memWatcher{docID: d.id, docFn: fn}
	snap := Snapshot{ID: d.id}
	if data, ok := d.col.docs[d.id]; ok {
		snap.Exists = true
		snap.Data = cloneFields(data)
	}
	d.col.mu.Unlock()

	fn(snap, nil)

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			d.col.mu.Lock()
			delete(d.col.watchers, id)
			d.col.mu.Unlock()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	return stop
}

func cloneFields(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func matches(doc Fields, cs []Constraint) bool {
	for _, c := range cs {
		if c.kind != kindWhere {
			continue
		}
		v, ok := doc[c.Field]
		if !ok {
			return false
		}
		switch c.Op {
		case "==":
			if compareValues(v, c.Value) != 0 {
				return false
			}
		case "!=":
			if compareValues(v, c.Value) == 0 {
				return false
			}
		case "<":
			if compareValues(v, c.Value) >= 0 {
				return false
			}
		case "<=":
			if compareValues(v, c.Value) > 0 {
				return false
			}
		case ">":
			if compareValues(v, c.Value) <= 0 {
				return false
			}
		case ">=":
			if compareValues(v, c.Value) < 0 {
				return false
			}
		case "in":
			if !containsValue(c.Value, v) {
				return false
			}
		case "not-in":
			if containsValue(c.Value, v) {
				return false
			}
		case "array-contains":
			if !containsValue(v, c.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsValue(list any, v any) bool {
	items, ok := list.([]any)
	if !ok {
		if ss, ok := list.([]string); ok {
			for _, s := range ss {
				if compareValues(s, v) == 0 {
					return true
				}
			}
		}
		return false
	}
	for _, it := range items {
		if compareValues(it, v) == 0 {
			return true
		}
	}
	return false
}

// compareValues orders the small set of field types the content documents
// use: bool, numbers, strings and times.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case nil:
		if b == nil {
			return 0
		}
		return -1
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return strings.Compare(typeName(a), typeName(b))
		}
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case string:
		bv, ok := b.(string)
		if !ok {
			return strings.Compare(typeName(a), typeName(b))
		}
		return strings.Compare(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return strings.Compare(typeName(a), typeName(b))
		}
		return av.Compare(bv)
	default:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		if aok && bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }
