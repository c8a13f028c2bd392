// internal/auth/jwt.go
package auth

import (
	"bestcard/internal/config"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "bestcard"

var ErrEmptyClientID = errors.New("client_id must not be empty")

type TokenService struct {
	secretKey []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewTokenService(cfg config.Config) *TokenService {
	return &TokenService{
		secretKey: []byte(cfg.JWTSecret),
		expiresIn: cfg.JWTExpiresIn,
		now:       time.Now,
	}
}

// GenerateToken issues an HS256 token whose subject is the API client id.
func (s *TokenService) GenerateToken(clientID string) (string, time.Time, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return "", time.Time{}, ErrEmptyClientID
	}

	now := s.now()
	expTime := now.Add(s.expiresIn)
	claims := jwt.RegisteredClaims{
		Subject:   clientID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expTime),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	slog.Info("JWT generated", "client_id", clientID, "expires_at", expTime.Format("2006-01-02 15:04:05"))
	return tokenStr, expTime, nil
}

// ParseToken validates the signature and expiry and returns the client id.
func (s *TokenService) ParseToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token claims")
	}

	slog.Debug("JWT parsed successfully", "client_id", claims.Subject)
	return claims.Subject, nil
}
