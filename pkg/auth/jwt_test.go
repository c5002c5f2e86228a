package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTManager_ShortSecret(t *testing.T) {
	if _, err := NewJWTManager("too-short", time.Hour); !errors.Is(err, ErrShortSecret) {
		t.Errorf("err = %v, want ErrShortSecret", err)
	}
}

func TestGenerateAndValidate(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	token, err := m.Generate("operator-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "operator-1" {
		t.Errorf("subject = %q, want operator-1", claims.Subject)
	}
}

func TestGenerate_EmptySubject(t *testing.T) {
	m, _ := NewJWTManager(testSecret, time.Hour)
	if _, err := m.Generate(""); !errors.Is(err, ErrEmptySubject) {
		t.Errorf("err = %v, want ErrEmptySubject", err)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	m, _ := NewJWTManager(testSecret, -time.Minute)

	token, err := m.Generate("operator-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("err = %v, want ErrExpiredToken", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	m1, _ := NewJWTManager(testSecret, time.Hour)
	m2, _ := NewJWTManager("another-secret-that-is-long-enough!!", time.Hour)

	token, _ := m1.Generate("operator-1")

	if _, err := m2.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidate_Garbage(t *testing.T) {
	m, _ := NewJWTManager(testSecret, time.Hour)
	if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestDefaultTokenDuration(t *testing.T) {
	m, err := NewJWTManager(testSecret, 0)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if m.tokenDuration != 24*time.Hour {
		t.Errorf("tokenDuration = %v, want 24h default", m.tokenDuration)
	}
}

func TestAPIKeyStore(t *testing.T) {
	hash, err := HashAPIKey("sk-live-abc123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	store := NewAPIKeyStore([]string{hash})

	if !store.Verify("sk-live-abc123") {
		t.Error("valid key rejected")
	}
	if store.Verify("sk-live-wrong") {
		t.Error("wrong key accepted")
	}
	if store.Verify("") {
		t.Error("empty key accepted")
	}
}

func TestHashAPIKey_Empty(t *testing.T) {
	if _, err := HashAPIKey(""); err == nil {
		t.Error("expected error for empty key")
	}
}
