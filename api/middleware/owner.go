package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stackmart/storefront-backend/pkg/config"
	"github.com/stackmart/storefront-backend/pkg/logger"
)

type ownerIDKey struct{}

// OwnerIdentity resolves an optional bearer token into an owner id on the
// request context. Carts work anonymously, so a missing or invalid token never
// rejects the request; it only drops the owner association.
func OwnerIdentity(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ownerID, err := parseOwnerID(raw, cfg)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "token_error", err.Error()), "owner token rejected")
				}
				next.ServeHTTP(w, r)
				return
			}

			if logg != nil {
				ctx = logg.WithField(ctx, "owner_id", ownerID)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ownerIDKey{}, ownerID)))
		})
	}
}

// OwnerIDFromContext returns the authenticated owner id, or "" for anonymous
// requests.
func OwnerIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ownerIDKey{}).(string); ok {
		return id
	}
	return ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseOwnerID(raw string, cfg config.JWTConfig) (string, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return claims.Subject, nil
}
