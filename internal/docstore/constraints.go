package docstore

import "reflect"

// Direction orders query results on a field.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type constraintKind int

const (
	kindWhere constraintKind = iota
	kindOrderBy
	kindLimit
)

// Constraint is one filter/sort/limit directive of a query or subscription.
// Construct with Where, OrderBy or Limit. The zero value is not a valid
// constraint.
type Constraint struct {
	kind  constraintKind
	Field string
	Op    string
	Value any
	Dir   Direction
	N     int
}

// Where filters on a field. Supported operators match the backend's:
// ==, !=, <, <=, >, >=, in, not-in, array-contains, array-contains-any.
func Where(field, op string, value any) Constraint {
	return Constraint{kind: kindWhere, Field: field, Op: op, Value: value}
}

func OrderBy(field string, dir Direction) Constraint {
	return Constraint{kind: kindOrderBy, Field: field, Dir: dir}
}

func Limit(n int) Constraint {
	return Constraint{kind: kindLimit, N: n}
}

// Equal compares two constraints by value, so freshly built but structurally
// identical constraints count as unchanged.
func (c Constraint) Equal(o Constraint) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case kindWhere:
		return c.Field == o.Field && c.Op == o.Op && reflect.DeepEqual(c.Value, o.Value)
	case kindOrderBy:
		return c.Field == o.Field && c.Dir == o.Dir
	case kindLimit:
		return c.N == o.N
	}
	return false
}

// ConstraintsEqual reports whether two constraint sets are equal element by
// element. Order matters: a constraint set is an ordered list.
func ConstraintsEqual(a, b []Constraint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
