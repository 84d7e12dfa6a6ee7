// Package docstore is a thin capability layer over the hosted document
// database. It exposes one-shot reads, live snapshot listeners and
// create/replace/merge/delete writes behind small interfaces so that the rest
// of the application is wired against either the real Firestore-backed
// implementation, an in-memory store, or an inert stub when no backend is
// configured.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNoDocumentID is returned by operations that need a document id when
// neither a stored default nor an explicit override is available.
var ErrNoDocumentID = errors.New("no document id")

type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value replaced by the backend's commit
// time on write. Implementations must translate it; it never reaches stored
// data as-is.
var ServerTimestamp = serverTimestamp{}

// Fields is a write payload. Document ids are never part of a payload; they
// are attached to records on read.
type Fields = map[string]any

// Snapshot is the state of one document at one point in time. A snapshot with
// Exists=false is a valid, successful result: the document is absent.
type Snapshot struct {
	ID     string
	Exists bool
	Data   Fields

	// decode fills a struct pointer from the snapshot's data. Optional; when
	// nil a JSON round-trip over Data is used.
	decode func(v any) error
}

// DataTo decodes the snapshot into v, which must be a non-nil struct pointer.
func (s Snapshot) DataTo(v any) error {
	if !s.Exists {
		return fmt.Errorf("document %q does not exist", s.ID)
	}
	if s.decode != nil {
		return s.decode(v)
	}
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Store is a handle to the document database.
type Store interface {
	Collection(name string) Collection
}

// Collection addresses one named collection.
type Collection interface {
	// Doc addresses a document by explicit id.
	Doc(id string) Document
	// NewDoc addresses a fresh document with a generated id.
	NewDoc() Document
	// Query runs a one-shot read over the constraint set.
	Query(ctx context.Context, cs []Constraint) ([]Snapshot, error)
	// Watch opens a live listener over the constraint set. Snapshots are
	// delivered in backend order on a single goroutine. The returned stop
	// function tears the listener down and is safe to call more than once.
	Watch(ctx context.Context, cs []Constraint, fn func([]Snapshot, error)) func()
}

// Document addresses one document.
type Document interface {
	ID() string
	// Get reads the document. A missing document is Exists=false, nil error.
	Get(ctx context.Context) (Snapshot, error)
	// Set writes the fields, replacing the document or merging into it.
	Set(ctx context.Context, fields Fields, merge bool) error
	Delete(ctx context.Context) error
	// Watch opens a live listener on the document. Same delivery and teardown
	// contract as Collection.Watch.
	Watch(ctx context.Context, fn func(Snapshot, error)) func()
}

// attachID sets the record's id field. The target field is located by its
// firestore (or json) struct tag, falling back to the field name, so models
// keep the usual `firestore:"id"` convention without the stored payload ever
// carrying the id.
func attachID(v any, field, id string) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if tagName(f, "firestore") == field || tagName(f, "json") == field || strings.EqualFold(f.Name, field) {
			fv := rv.Field(i)
			if fv.Kind() == reflect.String && fv.CanSet() {
				fv.SetString(id)
			}
			return
		}
	}
}

// recordID reads the record's id field, the inverse of attachID.
func recordID(v any, field string) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return ""
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if tagName(f, "firestore") == field || tagName(f, "json") == field || strings.EqualFold(f.Name, field) {
			if rv.Field(i).Kind() == reflect.String {
				return rv.Field(i).String()
			}
			return ""
		}
	}
	return ""
}

func tagName(f reflect.StructField, key string) string {
	tag := f.Tag.Get(key)
	if tag == "" {
		return ""
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// FieldsOf converts a struct into a write payload using its json tags,
// keeping field values native (times stay times, not strings). Server-stamped
// and id fields must not be struct members of drafts; use the domain input
// types for writes, not the stored record types.
func FieldsOf(v any) (Fields, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil payload")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("payload must be a struct, got %T", v)
	}
	out := Fields{}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := f.Name
		omitempty := false
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitempty = true
				}
			}
		}
		fv := rv.Field(i)
		if omitempty && fv.IsZero() {
			continue
		}
		out[name] = fv.Interface()
	}
	return out, nil
}
