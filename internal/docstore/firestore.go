package docstore

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewFirestore wraps a Firestore client as a Store.
func NewFirestore(client *firestore.Client) Store {
	return &fsStore{client: client}
}

type fsStore struct {
	client *firestore.Client
}

func (s *fsStore) Collection(name string) Collection {
	return &fsCollection{ref: s.client.Collection(name)}
}

type fsCollection struct {
	ref *firestore.CollectionRef
}

func (c *fsCollection) Doc(id string) Document {
	return &fsDocument{ref: c.ref.Doc(id)}
}

func (c *fsCollection) NewDoc() Document {
	return &fsDocument{ref: c.ref.NewDoc()}
}

func (c *fsCollection) Query(ctx context.Context, cs []Constraint) ([]Snapshot, error) {
	docs, err := applyConstraints(c.ref.Query, cs).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]Snapshot, 0, len(docs))
	for _, d := range docs {
		out = append(out, toSnapshot(d))
	}
	return out, nil
}

func (c *fsCollection) Watch(ctx context.Context, cs []Constraint, fn func([]Snapshot, error)) func() {
	cctx, cancel := context.WithCancel(ctx)
	it := applyConstraints(c.ref.Query, cs).Snapshots(cctx)
	go func() {
		for {
			qs, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				fn(nil, err)
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				fn(nil, err)
				return
			}
			snaps := make([]Snapshot, 0, len(docs))
			for _, d := range docs {
				snaps = append(snaps, toSnapshot(d))
			}
			fn(snaps, nil)
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			it.Stop()
		})
	}
}

type fsDocument struct {
	ref *firestore.DocumentRef
}

func (d *fsDocument) ID() string { return d.ref.ID }

func (d *fsDocument) Get(ctx context.Context) (Snapshot, error) {
	snap, err := d.ref.Get(ctx)
	if err != nil {
		// An absent document is a successful read.
		if status.Code(err) == codes.NotFound {
			return Snapshot{ID: d.ref.ID}, nil
		}
		return Snapshot{}, err
	}
	return toSnapshot(snap), nil
}

func (d *fsDocument) Set(ctx context.Context, fields Fields, merge bool) error {
	data := translateSentinels(fields)
	if merge {
		_, err := d.ref.Set(ctx, data, firestore.MergeAll)
		return err
	}
	_, err := d.ref.Set(ctx, data)
	return err
}

func (d *fsDocument) Delete(ctx context.Context) error {
	_, err := d.ref.Delete(ctx)
	return err
}

func (d *fsDocument) Watch(ctx context.Context, fn func(Snapshot, error)) func() {
	cctx, cancel := context.WithCancel(ctx)
	it := d.ref.Snapshots(cctx)
	go func() {
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				fn(Snapshot{}, err)
				return
			}
			fn(toSnapshot(snap), nil)
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			it.Stop()
		})
	}
}

func applyConstraints(q firestore.Query, cs []Constraint) firestore.Query {
	for _, c := range cs {
		switch c.kind {
		case kindWhere:
			q = q.Where(c.Field, c.Op, c.Value)
		case kindOrderBy:
			dir := firestore.Asc
			if c.Dir == Desc {
				dir = firestore.Desc
			}
			q = q.OrderBy(c.Field, dir)
		case kindLimit:
			q = q.Limit(c.N)
		}
	}
	return q
}

func toSnapshot(d *firestore.DocumentSnapshot) Snapshot {
	s := Snapshot{ID: d.Ref.ID, Exists: d.Exists()}
	if s.Exists {
		s.Data = d.Data()
		s.decode = d.DataTo
	}
	return s
}

// translateSentinels maps the package's server-timestamp sentinel onto the
// Firestore one. Payloads are shallow field maps; nested maps are copied
// untouched.
func translateSentinels(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}
