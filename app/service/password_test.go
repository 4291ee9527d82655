package service_test

import (
	"testing"

	"github.com/posturease/ms-go-account/app/service"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := service.NewPasswordHasher()

	passwords := []string{
		"pw1",
		"correct horse battery staple",
		"p@$$w0rd with spaces and ~!#%^&*()",
	}

	for _, password := range passwords {
		hash, err := hasher.Hash(password)
		if err != nil {
			t.Fatalf("hash failed for %q: %v", password, err)
		}
		if hash == password {
			t.Fatalf("hash must not equal plaintext")
		}
		if !hasher.Verify(password, hash) {
			t.Fatalf("verify rejected the matching plaintext %q", password)
		}
		if hasher.Verify(password+"x", hash) {
			t.Fatalf("verify accepted wrong plaintext for %q", password)
		}
	}
}

func TestPasswordHasherSaltsPerCall(t *testing.T) {
	hasher := service.NewPasswordHasher()

	first, err := hasher.Hash("samepassword")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := hasher.Hash("samepassword")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same input must differ")
	}
	if !hasher.Verify("samepassword", first) || !hasher.Verify("samepassword", second) {
		t.Fatalf("both salted hashes must verify")
	}
}
