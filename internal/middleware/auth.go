package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bookshelf/bookshelf-go/internal/model"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenVerifier verifies a session token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// ResolveIdentity returns middleware that attaches a principal to every request.
// A missing or malformed Authorization header, or a token that fails
// verification, yields an anonymous principal; the request always proceeds and
// each handler decides whether anonymity is acceptable.
func ResolveIdentity(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := model.Anonymous()

			if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
				id, err := tokens.Verify(token)
				if err != nil {
					slog.Debug("token rejected, continuing anonymously", "error", err, "path", r.URL.Path)
				} else {
					principal = model.Authenticated(id)
				}
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}

// PrincipalFromContext returns the principal attached by ResolveIdentity,
// or an anonymous principal if none was attached.
func PrincipalFromContext(ctx context.Context) model.Principal {
	p, ok := ctx.Value(principalKey).(model.Principal)
	if !ok {
		return model.Anonymous()
	}
	return p
}

// withPrincipal returns a copy of ctx carrying p.
func withPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
