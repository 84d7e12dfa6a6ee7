package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jean Dupont", "jean-dupont"},
		{"Église Évangélique", "eglise-evangelique"},
		{"  Mission   Bénin  ", "mission-benin"},
		{"L'assemblée (2024)", "lassemblee-2024"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lettre de nouvelles.pdf", "lettre-de-nouvelles.pdf"},
		{"  rapport  2024 .pdf", "rapport-2024-.pdf"},
		{"../../etc/passwd", "....etcpasswd"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSearchTokens(t *testing.T) {
	got := SearchTokens("Jean Dupont", "Cotonou")
	want := map[string]bool{"jean dupont": true, "jean": true, "dupont": true, "cotonou": true}
	if len(got) != len(want) {
		t.Fatalf("SearchTokens() = %v, want %d tokens", got, len(want))
	}
	for _, tok := range got {
		if !want[tok] {
			t.Errorf("unexpected token %q", tok)
		}
	}
}
