package auth

import (
	"fmt"
	"time"

	"github.com/gleam/dashboard/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "gleam-dashboard"

// JWTService signs the dashboard session token. The token only names a server-side
// session; the upstream bearer token never leaves the database.
type JWTService struct {
	secret string
	expiry time.Duration
}

type SessionClaims struct {
	Sub    string `json:"sub"` // session id
	UserID string `json:"uid"`
	Role   string `json:"role"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

func NewJWTService(cfg *config.Config) *JWTService {
	return New(cfg.JWT.SessionSecret, cfg.JWT.SessionExpiry)
}

func New(secret string, expiry time.Duration) *JWTService {
	return &JWTService{secret: secret, expiry: expiry}
}

func (j *JWTService) GenerateSessionToken(sessionID uuid.UUID, userID, role string, expiresAt time.Time) (string, string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := SessionClaims{
		Sub:    sessionID.String(),
		UserID: userID,
		Role:   role,
		JTI:    jti,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{"gleam-dashboard-api"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(j.secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, jti, nil
}

func (j *JWTService) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != issuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	return claims, nil
}

func (j *JWTService) GetSessionExpiry() time.Duration {
	return j.expiry
}
