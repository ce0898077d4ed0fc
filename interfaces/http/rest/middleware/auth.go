package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"lifelog-backend/pkg/auth"
	"lifelog-backend/pkg/common"
)

// Authenticate validates the bearer token on every request before any store
// access and places the authenticated user in the request context. Failures
// always produce a generic 401 body; verifier internals are logged, never
// returned.
func Authenticate(verifier *auth.Verifier, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				header = r.Header.Get("authorization")
			}
			if header == "" {
				common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				logger.Warn("token verification failed",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.UserID(),
				Email:  claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
