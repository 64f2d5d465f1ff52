package jwttoken

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "clearance/pkg/domain-errors"
)

// Issuer and audience shared by the server and operator tooling.
const (
	DefaultIssuer   = "clearance"
	DefaultAudience = "clearance-api"
)

// OfficerClaims are the claims carried by a customs officer's bearer token.
// The officer identifier is the registered subject.
type OfficerClaims struct {
	Station string `json:"station,omitempty"`
	jwt.RegisteredClaims
}

// OfficerID returns the token subject.
func (c *OfficerClaims) OfficerID() string {
	return c.Subject
}

// JWTService issues and validates HS256 officer tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateOfficerToken is used by operator tooling and tests; the service
// itself only validates.
func (s *JWTService) GenerateOfficerToken(officerID, station string, expiresIn time.Duration) (string, error) {
	if strings.TrimSpace(officerID) == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "officer id is required")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, OfficerClaims{
		Station: station,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   officerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*OfficerClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &OfficerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*OfficerClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no officer subject")
	}
	return claims, nil
}
