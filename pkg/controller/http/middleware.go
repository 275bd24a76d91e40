package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
)

// bearerToken returns the token of an "Authorization: Bearer" header
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authMiddleware attaches the authenticated principal to the request context.
// Requests without a token pass through anonymously so that use cases decide
// what an anonymous caller may see.
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authUC == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" && !authUC.IsNoAuthn() {
				next.ServeHTTP(w, r)
				return
			}

			p, err := authUC.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, r, goerr.Wrap(err, "failed to authenticate request"))
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), p)
			ctx = logging.With(ctx, logging.From(ctx).With("principal", p))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// meHandler returns the current principal
func meHandler(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		writeError(w, r, goerr.Wrap(usecase.ErrUnauthenticated, "no principal"))
		return
	}
	writeData(w, r, http.StatusOK, p)
}
