package middleware

import (
	"context"
	"net/http"
	"strings"

	"church-site/backend/internal/authstore"

	"firebase.google.com/go/v4/auth"
)

type ctxKey string

const authUserKey ctxKey = "authUser"

type AuthUser struct {
	UID    string
	Email  string
	Claims map[string]any
}

// WithAuth verifies the bearer ID token and publishes the verified principal
// into the session store, so every consumer observes one authoritative
// (user, loading) pair.
func WithAuth(authClient *auth.Client, sessions *authstore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authClient == nil {
				http.Error(w, "authentication is not configured", http.StatusServiceUnavailable)
				return
			}
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				http.Error(w, "missing Authorization: Bearer <token>", http.StatusUnauthorized)
				return
			}
			idToken := strings.TrimSpace(h[len("Bearer "):])

			tok, err := authClient.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				http.Error(w, verifyFailureMessage(err), http.StatusUnauthorized)
				return
			}

			au := &AuthUser{
				UID:    tok.UID,
				Claims: tok.Claims,
			}
			if v, ok := tok.Claims["email"].(string); ok {
				au.Email = v
			}

			if sessions != nil {
				sessions.SetUser(principalOf(tok))
				sessions.SetLoading(false)
			}

			ctx := context.WithValue(r.Context(), authUserKey, au)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// verifyFailureMessage maps a token verification failure to its backend
// error code and returns the user-facing translation.
func verifyFailureMessage(err error) string {
	switch {
	case auth.IsIDTokenExpired(err):
		return authstore.ErrorMessage("auth/id-token-expired")
	case auth.IsIDTokenRevoked(err):
		return authstore.ErrorMessage("auth/id-token-revoked")
	case auth.IsUserDisabled(err):
		return authstore.ErrorMessage("auth/user-disabled")
	default:
		return authstore.ErrorMessage("auth/invalid-credential")
	}
}

func principalOf(tok *auth.Token) *authstore.Principal {
	p := &authstore.Principal{UID: tok.UID}
	if v, ok := tok.Claims["email"].(string); ok {
		p.Email = v
	}
	if v, ok := tok.Claims["name"].(string); ok {
		p.DisplayName = v
	}
	if v, ok := tok.Claims["picture"].(string); ok {
		p.PhotoURL = v
	}
	if v, ok := tok.Claims["email_verified"].(bool); ok {
		p.EmailVerified = v
	}
	return p
}

func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	v := ctx.Value(authUserKey)
	if v == nil {
		return nil, false
	}
	au, ok := v.(*AuthUser)
	return au, ok
}

// IsEditor checks whether the user may modify site content.
func IsEditor(claims map[string]any) bool {
	if claims == nil {
		return false
	}
	if admin, ok := claims["admin"].(bool); ok && admin {
		return true
	}
	if editor, ok := claims["editor"].(bool); ok && editor {
		return true
	}
	if role, ok := claims["role"].(string); ok {
		if role == "admin" || role == "editor" {
			return true
		}
	}
	if roles, ok := claims["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && (s == "admin" || s == "editor") {
				return true
			}
		}
	}
	return false
}

// RequireEditor gates content mutations on the editor claims.
func RequireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		au, ok := GetAuthUser(r.Context())
		if !ok || !IsEditor(au.Claims) {
			http.Error(w, "editor role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
