package service

import (
	"fmt"

	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTIdentityVerifier implements ports.IdentityVerifier for HS256 tokens
// issued by the external identity service. Verify-only: this service never
// mints tokens.
type JWTIdentityVerifier struct {
	secret []byte
	issuer string
}

// NewJWTIdentityVerifier creates a verifier for externally issued tokens.
func NewJWTIdentityVerifier(secret, issuer string) *JWTIdentityVerifier {
	return &JWTIdentityVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify parses and validates a token, returning the caller identity.
func (v *JWTIdentityVerifier) Verify(tokenString string) (*ports.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer))
	if err != nil {
		return nil, apperror.ErrInvalidToken()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.ErrInvalidToken()
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, apperror.ErrInvalidToken()
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperror.ErrInvalidToken()
	}

	return &ports.Identity{UserID: userID}, nil
}
