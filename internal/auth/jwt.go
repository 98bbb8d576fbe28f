package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/models"
)

const issuer = "sponsorconnect"

type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	UserType string    `json:"user_type"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() models.Identity {
	return models.Identity{UserID: c.UserID, UserType: c.UserType, Name: c.Name, Email: c.Email}
}

// SessionID is the token's jti, the key of the server-side session.
func (c *Claims) SessionID() string { return c.ID }

// GenerateJWT signs a token for the identity bound to session sid.
// A non-positive expiration falls back to 24h.
func GenerateJWT(secret string, id models.Identity, sid string, expiration time.Duration) (string, time.Time, error) {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	now := time.Now()
	expiresAt := now.Add(expiration)

	claims := Claims{
		UserID:   id.UserID,
		UserType: id.UserType,
		Name:     id.Name,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			Subject:   id.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func ParseJWT(secret string, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" || models.NormalizeUserType(claims.UserType) == "" {
		return nil, fmt.Errorf("token missing session or role")
	}
	return claims, nil
}
