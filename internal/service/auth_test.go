package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := service.OperatorClaims{
		Sub:  "op-1",
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestValidateAccessToken_ValidRoles(t *testing.T) {
	svc := service.NewAuthService(testSecret, "", zap.NewNop())

	for _, role := range []string{service.RoleAdmin, service.RoleOperator} {
		claims, err := svc.ValidateAccessToken(signToken(t, role, time.Hour))
		if err != nil {
			t.Fatalf("role %s: expected valid token, got %v", role, err)
		}
		if claims.Role != role {
			t.Errorf("expected role %s, got %s", role, claims.Role)
		}
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := service.NewAuthService(testSecret, "", zap.NewNop())

	_, err := svc.ValidateAccessToken(signToken(t, service.RoleAdmin, -time.Hour))
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	svc := service.NewAuthService("other-secret", "", zap.NewNop())

	_, err := svc.ValidateAccessToken(signToken(t, service.RoleAdmin, time.Hour))
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateAccessToken_UnknownRole(t *testing.T) {
	svc := service.NewAuthService(testSecret, "", zap.NewNop())

	_, err := svc.ValidateAccessToken(signToken(t, "viewer", time.Hour))
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCheckSchedulerKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sched-key-123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash key: %v", err)
	}

	svc := service.NewAuthService(testSecret, string(hash), zap.NewNop())

	if err := svc.CheckSchedulerKey("sched-key-123"); err != nil {
		t.Errorf("expected key accepted, got %v", err)
	}
	if err := svc.CheckSchedulerKey("wrong-key"); err == nil {
		t.Error("expected wrong key rejected")
	}
}

func TestCheckSchedulerKey_NotConfigured(t *testing.T) {
	svc := service.NewAuthService(testSecret, "", zap.NewNop())

	var unauthorized *domain.ErrUnauthorized
	if err := svc.CheckSchedulerKey("anything"); !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized when unconfigured, got %v", err)
	}
}
