package middleware

import (
	"context"
	"net/http"
	"strings"

	"catalogfinder/internal/service"
)

type contextKey string

const (
	MerchantIDKey contextKey = "merchantId"
	ShopperIDKey  contextKey = "shopperId"
	CatalogIDKey  contextKey = "catalogId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireMerchant validates a merchant JWT from the Authorization header
func (m *AuthMiddleware) RequireMerchant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateMerchantToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), MerchantIDKey, claims.MerchantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireShopper validates a shopper JWT from the Authorization header or
// query param
func (m *AuthMiddleware) RequireShopper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateShopperToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, ShopperIDKey, claims.ShopperID)
		ctx = context.WithValue(ctx, CatalogIDKey, claims.CatalogID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetMerchantID extracts the merchant ID from context
func GetMerchantID(ctx context.Context) string {
	if v := ctx.Value(MerchantIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetShopperID extracts the shopper ID from context
func GetShopperID(ctx context.Context) string {
	if v := ctx.Value(ShopperIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetCatalogID extracts the token's catalog scope from context
func GetCatalogID(ctx context.Context) string {
	if v := ctx.Value(CatalogIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
