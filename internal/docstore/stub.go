package docstore

import "context"

// NewStub returns an inert Store. Reads succeed with empty results, writes
// no-op, listeners deliver one empty snapshot and never fire again. It stands
// in for a missing backend configuration so call sites never branch on
// configuration presence.
func NewStub() Store {
	return stubStore{}
}

type stubStore struct{}

func (stubStore) Collection(string) Collection { return stubCollection{} }

type stubCollection struct{}

func (stubCollection) Doc(id string) Document { return stubDocument{id: id} }

func (stubCollection) NewDoc() Document { return stubDocument{id: "stub"} }

func (stubCollection) Query(context.Context, []Constraint) ([]Snapshot, error) {
	return []Snapshot{}, nil
}

func (stubCollection) Watch(_ context.Context, _ []Constraint, fn func([]Snapshot, error)) func() {
	fn([]Snapshot{}, nil)
	return func() {}
}

type stubDocument struct {
	id string
}

func (d stubDocument) ID() string { return d.id }

func (d stubDocument) Get(context.Context) (Snapshot, error) {
	return Snapshot{ID: d.id}, nil
}

func (stubDocument) Set(context.Context, Fields, bool) error { return nil }

func (stubDocument) Delete(context.Context) error { return nil }

func (d stubDocument) Watch(_ context.Context, fn func(Snapshot, error)) func() {
	fn(Snapshot{ID: d.id}, nil)
	return func() {}
}
