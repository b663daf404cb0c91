package password

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func fastArgon2Config() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestArgon2HashAndVerify(t *testing.T) {
	hasher, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}
	if !hasher.Recognizes(hash) {
		t.Fatal("hasher must recognize its own output")
	}

	ok, err := hasher.Verify("P@ssw0rd-Ascii", hash)
	if err != nil || !ok {
		t.Fatalf("expected verification to succeed: ok=%v err=%v", ok, err)
	}
	ok, err = hasher.Verify("wrong-password", hash)
	if err != nil || ok {
		t.Fatalf("expected wrong password to fail cleanly: ok=%v err=%v", ok, err)
	}
}

func TestArgon2NeedsRehash(t *testing.T) {
	weak, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2(weak) error: %v", err)
	}
	hash, err := weak.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	stronger := fastArgon2Config()
	stronger.Time = 2
	strong, err := NewArgon2(stronger)
	if err != nil {
		t.Fatalf("NewArgon2(strong) error: %v", err)
	}

	if need, err := strong.NeedsRehash(hash); err != nil || !need {
		t.Fatalf("expected rehash for weaker params: need=%v err=%v", need, err)
	}
	if need, err := weak.NeedsRehash(hash); err != nil || need {
		t.Fatalf("expected no rehash for same params: need=%v err=%v", need, err)
	}
}

func TestArgon2VerifyMalformedHash(t *testing.T) {
	hasher, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	for _, bad := range []string{
		"not-a-hash",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	} {
		if _, err := hasher.Verify("whatever-pass", bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}

	for _, bad := range []string{
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1,x=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA",
	} {
		if _, err := hasher.NeedsRehash(bad); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("expected ErrMalformedHash for %q, got %v", bad, err)
		}
	}
	if _, err := hasher.Verify("whatever-pass", "$2a$10$abc"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for a bcrypt hash, got %v", err)
	}
}

func TestArgon2VerifiesPaddedEncoding(t *testing.T) {
	hasher, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	hash, err := hasher.Hash("padded-secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if strings.Contains(hash, "=$") || strings.HasSuffix(hash, "=") {
		t.Fatalf("expected unpadded PHC output, got %s", hash)
	}

	parts := strings.Split(hash, "$")
	for _, i := range []int{4, 5} {
		raw, err := base64.RawStdEncoding.DecodeString(parts[i])
		if err != nil {
			t.Fatalf("decode field %d: %v", i, err)
		}
		parts[i] = base64.StdEncoding.EncodeToString(raw)
	}
	padded := strings.Join(parts, "$")

	if ok, err := hasher.Verify("padded-secret", padded); err != nil || !ok {
		t.Fatalf("expected padded hash to verify: ok=%v err=%v", ok, err)
	}
}

func TestArgon2LengthBounds(t *testing.T) {
	cfg := fastArgon2Config()
	cfg.MaxPasswordBytes = 64
	hasher, err := NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	if _, err := hasher.Hash("short"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	if _, err := hasher.Hash(strings.Repeat("a", 65)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}

	exact := strings.Repeat("b", 64)
	hash, err := hasher.Hash(exact)
	if err != nil {
		t.Fatalf("expected exactly-max password to be accepted: %v", err)
	}
	if ok, err := hasher.Verify(exact, hash); err != nil || !ok {
		t.Fatalf("Verify failed for max-length password: ok=%v err=%v", ok, err)
	}
	if _, err := hasher.Verify(strings.Repeat("c", 65), hash); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong from Verify, got %v", err)
	}
}

func TestArgon2RejectsWeakConfig(t *testing.T) {
	cfg := fastArgon2Config()
	cfg.Memory = 1024
	if _, err := NewArgon2(cfg); err == nil {
		t.Fatal("expected low memory config to be rejected")
	}
}
