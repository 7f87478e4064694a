package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	ID             int    `json:"id"`
	OrganizationId string `json:"organization_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	jwt.StandardClaims
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "HostPilot-Secret"
	}
	return secret
}

func tokenLifespan() (time.Duration, error) {
	raw := os.Getenv("TOKEN_HOUR_LIFESPAN")
	if raw == "" {
		return 24 * time.Hour, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return time.Duration(hours) * time.Hour, nil
}

func JwtGenerate(userID int, organizationId string, name string, role string) (string, error) {
	if organizationId == "" {
		return "", ErrorOrganizationRequired
	}
	lifespan, err := tokenLifespan()
	if err != nil {
		return "", err
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:             userID,
		OrganizationId: organizationId,
		Name:           name,
		Role:           role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(lifespan).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	return t.SignedString(jwtSecret)
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}

// ParseClaims validates token and returns its claims.
func ParseClaims(token string) (*JwtCustomClaim, error) {
	parsed, err := JwtValidate(token)
	if err != nil {
		return nil, err
	}
	claim, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claim.OrganizationId == "" {
		return nil, ErrorOrganizationRequired
	}
	return claim, nil
}
