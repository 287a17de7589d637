package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with access-specific ones
type AccessClaims struct {
	jwt.RegisteredClaims
	Chain     string `json:"chn"` // Chain kind the subject authenticated on
	RefreshID string `json:"rid"` // ID of the refresh token
}

// RefreshClaims combines standard claims with the chain kind
type RefreshClaims struct {
	jwt.RegisteredClaims
	Chain string `json:"chn"`
}
