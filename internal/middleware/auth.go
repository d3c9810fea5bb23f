package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/latienda/backend/internal"
	"github.com/latienda/backend/internal/blacklist"
	inErrors "github.com/latienda/backend/internal/errors"
	inHttp "github.com/latienda/backend/internal/http"
	"github.com/latienda/backend/internal/log"
)

// Auth verifies the bearer token and rejects tokens present in the blacklist.
// The parsed token is attached to the request context for downstream handlers.
func Auth(store *blacklist.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware Auth").Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authorization, "Bearer ")
			if authorization == "" || !found || token == "" {
				logger.Error().
					Err(inErrors.ErrEmptyAuth).
					Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			revoked, err := store.Exists(c, token)
			if err != nil {
				err = fmt.Errorf("failed checking blacklist with error=%w", inErrors.ErrStorageFailure)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusInternalServerError,
					"message":    inErrors.ErrStorageFailure.Error(),
				})
				return
			}
			if revoked {
				logger.Error().
					Err(inErrors.ErrTokenRevoked).
					Msg(inErrors.ErrTokenRevoked.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenRevoked.Error(),
				})
				return
			}

			jwtToken, err := internal.VerifyToken(c, token)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = internal.AttachJwtToken(c, jwtToken)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
