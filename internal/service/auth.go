package service

import (
	"fmt"

	"github.com/haulhire/leadpool-engine-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Operator roles accepted by the admin API. Tokens are issued by the
// platform's identity provider; this service only validates them.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// OperatorClaims represents the custom claims in operator access tokens.
type OperatorClaims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService validates operator identities at the API boundary.
// Unauthenticated or under-privileged calls are rejected before any
// store access happens.
type AuthService struct {
	jwtSecret        []byte
	schedulerKeyHash []byte
	logger           *zap.Logger
}

// NewAuthService creates the auth boundary. schedulerKeyHash is the
// bcrypt hash of the static API key the external scheduler presents;
// empty disables the scheduler path entirely.
func NewAuthService(jwtSecret, schedulerKeyHash string, logger *zap.Logger) *AuthService {
	return &AuthService{
		jwtSecret:        []byte(jwtSecret),
		schedulerKeyHash: []byte(schedulerKeyHash),
		logger:           logger,
	}
}

// ValidateAccessToken parses and verifies an operator bearer token.
func (s *AuthService) ValidateAccessToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token claims"}
	}

	if claims.Role != RoleAdmin && claims.Role != RoleOperator {
		return nil, &domain.ErrForbidden{Action: "operator access required"}
	}

	return claims, nil
}

// CheckSchedulerKey verifies the external scheduler's API key against
// the configured bcrypt hash.
func (s *AuthService) CheckSchedulerKey(key string) error {
	if len(s.schedulerKeyHash) == 0 {
		return &domain.ErrUnauthorized{Message: "scheduler access not configured"}
	}
	if err := bcrypt.CompareHashAndPassword(s.schedulerKeyHash, []byte(key)); err != nil {
		return &domain.ErrUnauthorized{Message: "invalid scheduler key"}
	}
	return nil
}
