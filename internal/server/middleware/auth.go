package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/fantasy11/internal/server/handlers"
)

var (
	errNoCredentials = errors.New("no authorization header")
	errBadScheme     = errors.New("not a bearer token")
)

// detailFor переводит причину отказа в текст ответа
func detailFor(err error) string {
	if errors.Is(err, errNoCredentials) {
		return "Not authenticated"
	}
	return "Invalid authentication scheme"
}

// bearerToken достаёт токен из "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadScheme
	}
	return token, nil
}

// AuthMiddleware rejects requests without a valid access token with 401.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return authenticate(logger, jwtConfig, true)
}

// OptionalAuthMiddleware lets anonymous requests through and attaches the
// user when a valid token is sent. A token that fails validation is still
// a 401 so the client knows to refresh it.
func OptionalAuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return authenticate(logger, jwtConfig, false)
}

func authenticate(logger *slog.Logger, jwtConfig handlers.JWTConfig, required bool) func(http.Handler) http.Handler {
	deny := func(w http.ResponseWriter, detail string) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, detail)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			switch {
			case errors.Is(err, errNoCredentials) && !required:
				next.ServeHTTP(w, r)
				return
			case err != nil:
				logger.Warn("Rejected Authorization header", "route", routeTemplate(r), "reason", err)
				deny(w, detailFor(err))
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, token)
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				deny(w, "Could not validate credentials")
				return
			}

			logger.Debug("User authenticated", "user_id", claims.UserID(), "username", claims.Username)
			next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), claims.UserID(), claims.Username)))
		})
	}
}
