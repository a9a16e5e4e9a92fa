package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// OpsRole is the role claim required on ops API tokens.
const OpsRole = "admin"

var ErrInvalidOpsToken = errors.New("invalid ops token")

// GenerateOpsToken creates a signed JWT for an operator. The token expires
// after the specified duration.
func GenerateOpsToken(secret []byte, subject string, duration time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("ops token secret is not configured")
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": OpsRole,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateOpsToken parses an ops token and returns its subject.
func ValidateOpsToken(secret []byte, tokenString string) (string, error) {
	if len(secret) == 0 {
		return "", ErrInvalidOpsToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidOpsToken
	}
	if role, _ := claims["role"].(string); role != OpsRole {
		return "", ErrInvalidOpsToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return sub, nil
}
