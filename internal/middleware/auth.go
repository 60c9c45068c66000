// file: internal/middleware/auth.go
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"engagehub/internal/config"
	"engagehub/internal/contextutils"
	"engagehub/internal/models"
	"engagehub/internal/response"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthMiddleware authenticates requests via bearer JWTs
type AuthMiddleware struct {
	config *config.AuthConfig
	logger *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{config: cfg, logger: logger}
}

// Claims are the JWT claims this service issues and accepts
type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAuth rejects requests without a valid bearer token and stores the
// actor's identity in the request context
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := am.parseToken(r)
		if err != nil {
			response.WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}

		ctx := contextutils.WithUserID(r.Context(), claims.UserID)
		ctx = contextutils.WithUserRole(ctx, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches identity when a valid token is present but lets
// anonymous requests through
func (am *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := am.parseToken(r); err == nil {
			ctx := contextutils.WithUserID(r.Context(), claims.UserID)
			ctx = contextutils.WithUserRole(ctx, claims.Role)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only the listed roles past
func (am *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := contextutils.GetUserRole(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.WriteError(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		})
	}
}

// RequireAdmin is shorthand for admin-only routes
func (am *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return am.RequireRole(models.RoleAdmin)(next)
}

func (am *AuthMiddleware) parseToken(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("missing authorization header")
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, fmt.Errorf("invalid authorization header")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(am.config.JWTSecret), nil
		},
		jwt.WithIssuer(am.config.TokenIssuer),
		jwt.WithLeeway(am.config.AllowedClockSkew),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token")
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
