package usecase

import (
	"testing"

	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := GenerateHashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckHashPassword("s3cret-pass", hash) {
		t.Error("correct password rejected")
	}
	if CheckHashPassword("wrong-pass", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(identity.User{ID: "u1", Email: "dana@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u1" || claims.Email != "dana@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	t.Setenv("JWT_SECRET", "different-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token accepted under wrong secret")
	}
}
