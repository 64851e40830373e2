package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hearsight/internal/contextutil"
)

// Claims is the bearer-token payload.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Authenticator verifies optional HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	leeway time.Duration
}

// NewAuthenticator creates an Authenticator. An empty secret disables verification:
// every request is treated as anonymous.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), leeway: 30 * time.Second}
}

// Enabled reports whether tokens are verified.
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// IssueToken signs a token for userID. Used by tooling and tests.
func (a *Authenticator) IssueToken(userID, username string, isAdmin bool, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		IsAdmin:  isAdmin,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates a token and returns its claims.
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Middleware links requests to a user when a valid bearer token is sent.
// Requests without a token proceed anonymously; a token that fails
// verification is rejected with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !a.Enabled() || header == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := contextutil.LoggerFromContext(ctx)

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			logger.WarnContext(ctx, "malformed authorization header")
			writeUnauthorized(w, "Invalid authorization header")
			return
		}

		claims, err := a.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			logger.WarnContext(ctx, "token rejected", "error", err)
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			writeUnauthorized(w, msg)
			return
		}

		ctx = contextutil.WithUserID(ctx, claims.Subject)
		ctx = contextutil.WithLogger(ctx, logger.With("user_id", claims.Subject))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="hearsight"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
