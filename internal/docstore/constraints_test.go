package docstore

import "testing"

func TestConstraintsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b []Constraint
		want bool
	}{
		{
			name: "both empty",
			a:    nil,
			b:    []Constraint{},
			want: true,
		},
		{
			name: "identical where",
			a:    []Constraint{Where("status", "==", "published")},
			b:    []Constraint{Where("status", "==", "published")},
			want: true,
		},
		{
			name: "different where value",
			a:    []Constraint{Where("status", "==", "published")},
			b:    []Constraint{Where("status", "==", "draft")},
			want: false,
		},
		{
			name: "different operator",
			a:    []Constraint{Where("views", ">", 10)},
			b:    []Constraint{Where("views", ">=", 10)},
			want: false,
		},
		{
			name: "membership values compared deeply",
			a:    []Constraint{Where("tag", "in", []any{"jeunesse", "louange"})},
			b:    []Constraint{Where("tag", "in", []any{"jeunesse", "louange"})},
			want: true,
		},
		{
			name: "membership order matters",
			a:    []Constraint{Where("tag", "in", []any{"a", "b"})},
			b:    []Constraint{Where("tag", "in", []any{"b", "a"})},
			want: false,
		},
		{
			name: "full set equal",
			a: []Constraint{
				Where("active", "==", true),
				OrderBy("date", Desc),
				Limit(20),
			},
			b: []Constraint{
				Where("active", "==", true),
				OrderBy("date", Desc),
				Limit(20),
			},
			want: true,
		},
		{
			name: "constraint order matters",
			a:    []Constraint{OrderBy("date", Desc), Limit(20)},
			b:    []Constraint{Limit(20), OrderBy("date", Desc)},
			want: false,
		},
		{
			name: "different limit",
			a:    []Constraint{Limit(20)},
			b:    []Constraint{Limit(21)},
			want: false,
		},
		{
			name: "different direction",
			a:    []Constraint{OrderBy("date", Asc)},
			b:    []Constraint{OrderBy("date", Desc)},
			want: false,
		},
		{
			name: "different length",
			a:    []Constraint{Limit(20)},
			b:    []Constraint{Limit(20), OrderBy("date", Asc)},
			want: false,
		},
		{
			name: "kind mismatch",
			a:    []Constraint{Where("n", "==", 1)},
			b:    []Constraint{Limit(1)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConstraintsEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ConstraintsEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}
