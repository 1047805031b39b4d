package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"civicsense/internal/ports"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, principal ports.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func principalFrom(ctx context.Context) (ports.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(ports.Principal)
	return principal, ok
}

func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.auth == nil {
			writeError(w, r, errors.New("authenticator is not configured"))
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		const prefix = "Bearer "
		if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
			writeError(w, r, ports.ErrUnauthenticated)
			return
		}

		principal, err := h.auth.Authenticate(r.Context(), header[len(prefix):])
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFrom(r.Context())
			if !ok {
				writeError(w, r, ports.ErrUnauthenticated)
				return
			}
			if principal.Role != role {
				writeError(w, r, ports.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
