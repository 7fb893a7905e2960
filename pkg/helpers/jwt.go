package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager validates and (for the auth provider's shared-secret setup)
// generates the session tokens carried in cookies.
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

// Claims identify the logged-in user behind a token.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"unm"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(userID, username string) (string, time.Time, error) {
	return m.generate(userID, username, m.AccessSecret, m.AccessTTL)
}

func (m *JWTManager) GenerateRefreshToken(userID, username string) (string, time.Time, error) {
	return m.generate(userID, username, m.RefreshSecret, m.RefreshTTL)
}

func (m *JWTManager) generate(userID, username string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.AccessSecret)
}

func (m *JWTManager) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.RefreshSecret)
}

func parseToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
