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
	ID      int    `json:"id"`
	GuildId string `json:"guild_id"`
	Role    string `json:"role"`
	jwt.StandardClaims
}

func getJwtSecret() []byte {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return []byte("GuildRoster-Secret")
	}
	return []byte(secret)
}

func TokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Hour * time.Duration(hours)
}

func JwtGenerate(userID int, guildId string, role string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:      userID,
		GuildId: guildId,
		Role:    role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(TokenLifespan()).Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	token, err := t.SignedString(getJwtSecret())
	if err != nil {
		return "", err
	}

	return token, nil
}

func JwtValidate(token string) (*JwtCustomClaim, error) {
	parsed, err := jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return getJwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
