package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"church-site/backend/internal/authstore"
)

func TestVerifyFailureMessageTranslates(t *testing.T) {
	// Verification failures surface as the translated message, never a raw
	// backend error. Errors without a recognized code fall back to the
	// generic invalid-credential translation.
	got := verifyFailureMessage(errors.New("token signature mismatch"))
	if got != authstore.ErrorMessage("auth/invalid-credential") {
		t.Errorf("fallback message = %q", got)
	}
	if got != "Identifiants invalides." {
		t.Errorf("expected French translation, got %q", got)
	}
}

func TestIsEditor(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   bool
	}{
		{"nil claims", nil, false},
		{"empty claims", map[string]any{}, false},
		{"admin flag", map[string]any{"admin": true}, true},
		{"editor flag", map[string]any{"editor": true}, true},
		{"editor flag false", map[string]any{"editor": false}, false},
		{"role string editor", map[string]any{"role": "editor"}, true},
		{"role string admin", map[string]any{"role": "admin"}, true},
		{"role string member", map[string]any{"role": "member"}, false},
		{"roles array", map[string]any{"roles": []any{"member", "editor"}}, true},
		{"roles array no match", map[string]any{"roles": []any{"member"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEditor(tt.claims); got != tt.want {
				t.Errorf("IsEditor(%v) = %v, want %v", tt.claims, got, tt.want)
			}
		})
	}
}

func TestRequireEditor(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireEditor(next)

	// No authenticated user in context.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/admin/messages", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("no user: status = %d, want 403", rec.Code)
	}

	// Authenticated but not an editor.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/admin/messages", nil)
	ctx := context.WithValue(req.Context(), authUserKey, &AuthUser{UID: "u1", Claims: map[string]any{"role": "member"}})
	h.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member: status = %d, want 403", rec.Code)
	}

	// Editor passes through.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/v1/admin/messages", nil)
	ctx = context.WithValue(req.Context(), authUserKey, &AuthUser{UID: "u2", Claims: map[string]any{"editor": true}})
	h.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusNoContent {
		t.Errorf("editor: status = %d, want 204", rec.Code)
	}
}
