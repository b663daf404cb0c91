package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndVerify(t *testing.T) {
	hasher, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	hash, err := hasher.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !hasher.Recognizes(hash) {
		t.Fatalf("expected bcrypt prefix, got %s", hash)
	}

	if ok, err := hasher.Verify("correct-horse", hash); err != nil || !ok {
		t.Fatalf("expected match: ok=%v err=%v", ok, err)
	}
	if ok, err := hasher.Verify("wrong-horse", hash); err != nil || ok {
		t.Fatalf("expected clean mismatch: ok=%v err=%v", ok, err)
	}
	if _, err := hasher.Verify("correct-horse", "$2a$garbage"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestBcryptBounds(t *testing.T) {
	if _, err := NewBcrypt(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("expected cost above max to be rejected")
	}
	if h, err := NewBcrypt(0); err != nil || h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %v %v", h, err)
	}

	hasher, _ := NewBcrypt(bcrypt.MinCost)
	if _, err := hasher.Hash("1234567"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	if _, err := hasher.Hash(strings.Repeat("x", 73)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestBcryptNeedsRehash(t *testing.T) {
	weak, _ := NewBcrypt(bcrypt.MinCost)
	strong, _ := NewBcrypt(bcrypt.MinCost + 1)

	hash, err := weak.Hash("password-123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if need, err := strong.NeedsRehash(hash); err != nil || !need {
		t.Fatalf("expected rehash: need=%v err=%v", need, err)
	}
	if need, err := weak.NeedsRehash(hash); err != nil || need {
		t.Fatalf("expected no rehash: need=%v err=%v", need, err)
	}
}

func TestChainVerifiesLegacyFormatAndAsksForRehash(t *testing.T) {
	bc, _ := NewBcrypt(bcrypt.MinCost)
	ar, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	legacyHash, err := ar.Hash("migrating-pass")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	chain := NewChain(bc, ar)
	if ok, err := chain.Verify("migrating-pass", legacyHash); err != nil || !ok {
		t.Fatalf("expected legacy hash to verify: ok=%v err=%v", ok, err)
	}
	if need, err := chain.NeedsRehash(legacyHash); err != nil || !need {
		t.Fatalf("expected legacy hash to need rehash: need=%v err=%v", need, err)
	}

	fresh, err := chain.Hash("migrating-pass")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !bc.Recognizes(fresh) {
		t.Fatal("chain must hash with its primary")
	}
	if need, err := chain.NeedsRehash(fresh); err != nil || need {
		t.Fatalf("primary hash should not need rehash: need=%v err=%v", need, err)
	}

	if _, err := chain.Verify("x", "plaintext"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
