package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/songlist/internal/shared"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

const TokenType = "bearer"

// Claims are the JWT claims issued to the operator.
type Claims struct {
	jwt.RegisteredClaims
}

// Username returns the identity the token was issued to.
func (c *Claims) Username() string {
	return c.Subject
}

type claimsKey struct{}

// ClaimsFromContext returns the claims stored by [Gate.Middleware].
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

// Gate issues and verifies operator tokens.
type Gate struct {
	username string
	password string
	secret   []byte
	ttlWeeks int
	now      func() time.Time
}

// NewGate creates a Gate from the auth configuration.
func NewGate(cfg shared.AuthConfig) (*Gate, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: auth.jwt_secret is required", shared.ErrMissingConfig)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, shared.ErrMissingCredentials
	}

	ttl := cfg.TokenTTLWeeks
	if ttl <= 0 {
		ttl = shared.DefaultConfig().Auth.TokenTTLWeeks
	}

	return &Gate{
		username: cfg.Username,
		password: cfg.Password,
		secret:   []byte(cfg.JWTSecret),
		ttlWeeks: ttl,
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source. Used to issue or check tokens at a fixed time.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Login checks the credential and returns a signed token.
// Returns [shared.ErrInvalidCredentials] when either value does not match.
func (g *Gate) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password))
	if userOK&passOK != 1 {
		return "", shared.ErrInvalidCredentials
	}

	return g.Issue(username)
}

// Issue signs a token for subject. The expiry is computed on the calendar so very
// long lifetimes do not overflow [time.Duration].
func (g *Gate) Issue(subject string) (string, error) {
	now := g.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.AddDate(0, 0, 7*g.ttlWeeks)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token and returns its claims.
// Expired tokens return [shared.ErrTokenExpired]; every other failure returns
// [shared.ErrNotAuthenticated].
func (g *Gate) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", shared.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token claims", shared.ErrNotAuthenticated)
	}

	return claims, nil
}

// BearerToken extracts the token from an `Authorization: Bearer <token>` header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// Middleware rejects requests without a valid bearer token and stores the claims
// in the request context for the next handler.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			unauthorized(w, "Not authenticated")
			return
		}

		claims, err := g.Verify(token)
		if err != nil {
			if errors.Is(err, shared.ErrTokenExpired) {
				unauthorized(w, "Token has expired")
			} else {
				unauthorized(w, "Could not validate credentials")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
