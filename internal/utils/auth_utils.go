package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func HashPasscode(passcode string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func ComparePasscode(hashed string, passcode string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(passcode)); err != nil {
		return errs.ErrWrongPasscode
	}
	return nil
}

func GenerateSecretKey() string {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func CreateParticipantToken(claims models.Claims, secretKey []byte, expiration time.Time) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.ParticipantID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiration),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func VerifyToken(tokenString string, secretKey []byte) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if !token.Valid || claims.ParticipantID == "" || claims.BoardID == 0 {
		return nil, errs.ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest reads a bearer token from the Authorization header or the
// token query parameter; browsers cannot set headers on websocket upgrades.
func TokenFromRequest(ctx *gin.Context) string {
	token := strings.TrimSpace(ctx.GetHeader("Authorization"))
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		token = ctx.Query("token")
	}
	return token
}

func GetClaimsFromContext(ctx *gin.Context) *models.Claims {
	value, ok := ctx.Get("claims")
	if !ok {
		return nil
	}
	claims, _ := value.(*models.Claims)
	return claims
}
