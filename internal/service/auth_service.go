package service

import (
	"errors"
	"os"
	"time"

	"catalogfinder/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles merchant and shopper authentication
type AuthService struct {
	merchantUsername string
	merchantPassword string
	jwtSecret        []byte
}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	username := os.Getenv("MERCHANT_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("MERCHANT_PASSWORD")
	if password == "" {
		password = "password123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}

	return &AuthService{
		merchantUsername: username,
		merchantPassword: password,
		jwtSecret:        []byte(secret),
	}
}

// Login validates merchant credentials and returns a token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.merchantUsername || password != s.merchantPassword {
		return nil, ErrInvalidCredentials
	}

	merchantID := "merchant_" + uuid.New().String()[:8]

	claims := &model.MerchantClaims{
		MerchantID: merchantID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:      tokenString,
		MerchantID: merchantID,
	}, nil
}

// ValidateMerchantToken validates a merchant JWT and returns claims
func (s *AuthService) ValidateMerchantToken(tokenString string) (*model.MerchantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.MerchantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.MerchantClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateShopperToken creates a catalog-scoped token for a shopper
func (s *AuthService) GenerateShopperToken(catalogID, shopperID string) (string, error) {
	claims := &model.ShopperClaims{
		CatalogID: catalogID,
		ShopperID: shopperID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateShopperToken validates a shopper JWT and returns claims
func (s *AuthService) ValidateShopperToken(tokenString string) (*model.ShopperClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ShopperClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ShopperClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
