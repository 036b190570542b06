package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndVerifyJWT(t *testing.T) {
	if err := InitJWTSecret("test-secret"); err != nil {
		t.Fatal(err)
	}

	token, err := GenerateJWT("user-1", "jo@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "jo@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < SessionTTL-time.Minute || ttl > SessionTTL {
		t.Errorf("expiry %v out of range", ttl)
	}
}

func TestVerifyJWTRejects(t *testing.T) {
	if err := InitJWTSecret("test-secret"); err != nil {
		t.Fatal(err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, _ := expired.SignedString([]byte("test-secret"))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	forgedToken, _ := forged.SignedString([]byte("other-secret"))

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"})
	noExpiryToken, _ := noExpiry.SignedString([]byte("test-secret"))

	for name, token := range map[string]string{
		"expired":   expiredToken,
		"forged":    forgedToken,
		"no expiry": noExpiryToken,
		"garbage":   "not-a-token",
	} {
		if _, err := VerifyJWT(token); err == nil {
			t.Errorf("%s token accepted", name)
		}
	}
}

func TestInitJWTSecretRequiresValue(t *testing.T) {
	if err := InitJWTSecret(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
