package service_test

import (
	"testing"

	"github.com/posturease/ms-go-account/app/service"
)

func TestGenerateTokenLengthAndAlphabet(t *testing.T) {
	token, err := service.GenerateToken(48)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(token) != 48 {
		t.Fatalf("expected length 48, got %d", len(token))
	}
	for _, ch := range token {
		isAlnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if !isAlnum {
			t.Fatalf("token contains non-alphanumeric character %q", ch)
		}
	}
}

func TestGenerateTokenDefaultLength(t *testing.T) {
	token, err := service.GenerateToken(0)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(token) != service.DefaultTokenLength {
		t.Fatalf("expected default length %d, got %d", service.DefaultTokenLength, len(token))
	}
}

func TestGenerateTokenUnpredictable(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		token, err := service.GenerateToken(32)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}
