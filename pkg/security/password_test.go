package security_test

import (
	"testing"

	"github.com/watchengine/watch-engine-backend/pkg/config"
	"github.com/watchengine/watch-engine-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	cases := map[string]bool{
		"short":           false,
		"        ":        false,
		"long-enough":     true,
		"exactly8":        true,
		"ünïcødé-pässwörd": true,
	}
	for pw, ok := range cases {
		err := security.CheckPasswordPolicy(pw)
		if ok && err != nil {
			t.Fatalf("expected %q to pass, got %v", pw, err)
		}
		if !ok && err == nil {
			t.Fatalf("expected %q to fail", pw)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	cheap := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	hash, err := security.HashPassword("very-secure-password", cheap)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if security.NeedsRehash(hash, cheap) {
		t.Fatal("hash produced with current params must not need a rehash")
	}
	stronger := cheap
	stronger.ArgonTime = 2
	if !security.NeedsRehash(hash, stronger) {
		t.Fatal("hash with outdated params must need a rehash")
	}
	if !security.NeedsRehash("garbage", cheap) {
		t.Fatal("unreadable hash must need a rehash")
	}
}

func TestVerifyPasswordRejectsOtherVersion(t *testing.T) {
	legacy := "$argon2id$v=16$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5"
	if _, err := security.VerifyPassword("irrelevant", legacy); err != security.ErrIncompatibleVersion {
		t.Fatalf("expected ErrIncompatibleVersion, got %v", err)
	}
}
