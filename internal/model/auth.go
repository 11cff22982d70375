package model

import "github.com/golang-jwt/jwt/v5"

// LoginResponse is returned on a successful merchant login.
type LoginResponse struct {
	Token      string `json:"token"`
	MerchantID string `json:"merchantId"`
}

// MerchantClaims is the JWT payload for merchant (catalog admin) tokens.
type MerchantClaims struct {
	MerchantID string `json:"merchantId"`
	jwt.RegisteredClaims
}

// ShopperClaims is the JWT payload for shopper tokens, scoped to one catalog.
type ShopperClaims struct {
	CatalogID string `json:"catalogId"`
	ShopperID string `json:"shopperId"`
	jwt.RegisteredClaims
}
