package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKeyAuth string

// PrincipalKey is the context key for the authenticated subject.
const PrincipalKey contextKeyAuth = "auth_principal"

// claims is the gateway's own bearer-token shape: a subject plus the
// registered expiry/issued-at fields, HMAC-signed with the server's
// configured secret.
type claims struct {
	jwt.RegisteredClaims
}

// Authenticate returns middleware that requires a valid Bearer JWT,
// signed with secret, on every request. Intended as the server's one
// external-auth collaborator; the gateway itself has no notion of users
// or roles beyond the token's subject.
func Authenticate(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			var c claims
			_, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return key, nil
			})
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, c.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Principal returns the authenticated token subject, or "" if the
// request passed through unauthenticated (no secret configured).
func Principal(ctx context.Context) string {
	s, _ := ctx.Value(PrincipalKey).(string)
	return s
}

// IssueToken signs a token for subject, valid for ttl. Used by the CLI
// to mint a token an operator can hand to an API consumer.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"statusCode":` + strconv.Itoa(status) + `,"statusMessage":"` + message + `"}`))
}
