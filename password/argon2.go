package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

// floor is the weakest parameter set NewArgon2 accepts and parsePHC will verify against.
var floor = Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}

var b64 = base64.RawStdEncoding

// Config tunes Argon2id. Memory is in KiB. MaxPasswordBytes 0 means DefaultMaxPasswordBytes.
type Config struct {
	Memory           uint32
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
}

// DefaultArgon2Config follows the OWASP baseline for Argon2id.
func DefaultArgon2Config() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 hashes with Argon2id and encodes the result as a PHC string.
type Argon2 struct {
	params Config
	lengthPolicy
}

func NewArgon2(cfg Config) (*Argon2, error) {
	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}
	switch {
	case cfg.Memory < floor.Memory:
		return nil, fmt.Errorf("argon2 memory must be >= %d KiB", floor.Memory)
	case cfg.Time < floor.Time:
		return nil, fmt.Errorf("argon2 time must be >= %d", floor.Time)
	case cfg.Parallelism < floor.Parallelism:
		return nil, fmt.Errorf("argon2 parallelism must be >= %d", floor.Parallelism)
	case cfg.SaltLength < floor.SaltLength:
		return nil, fmt.Errorf("argon2 salt length must be >= %d", floor.SaltLength)
	case cfg.KeyLength < floor.KeyLength:
		return nil, fmt.Errorf("argon2 key length must be >= %d", floor.KeyLength)
	case cfg.MaxPasswordBytes < MinPasswordBytes:
		return nil, fmt.Errorf("argon2 MaxPasswordBytes must be >= %d", MinPasswordBytes)
	}
	return &Argon2{params: cfg, lengthPolicy: lengthPolicy{max: cfg.MaxPasswordBytes}}, nil
}

// Hash uses the raw password bytes as given, without Unicode normalization.
func (a *Argon2) Hash(password string) (string, error) {
	if err := a.forHash(password); err != nil {
		return "", err
	}
	salt := make([]byte, a.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	stored := phc{Config: a.params, salt: salt}
	stored.key = stored.derive(password)
	return stored.String(), nil
}

func (a *Argon2) Verify(password, encodedHash string) (bool, error) {
	if err := a.forVerify(password); err != nil {
		return false, err
	}
	stored, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(stored.derive(password), stored.key) == 1, nil
}

// NeedsRehash is true when any stored cost is below the configured one or the key
// length differs.
func (a *Argon2) NeedsRehash(encodedHash string) (bool, error) {
	stored, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}
	weaker := stored.Memory < a.params.Memory ||
		stored.Time < a.params.Time ||
		stored.Parallelism < a.params.Parallelism ||
		stored.KeyLength != a.params.KeyLength
	return weaker, nil
}

func (a *Argon2) Recognizes(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, argon2Prefix)
}

// phc is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type phc struct {
	Config
	salt []byte
	key  []byte
}

func (p phc) derive(password string) []byte {
	return argon2.IDKey([]byte(password), p.salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)
}

func (p phc) String() string {
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, p.Memory, p.Time, p.Parallelism,
		b64.EncodeToString(p.salt), b64.EncodeToString(p.key))
}

func parsePHC(encoded string) (phc, error) {
	var p phc
	if !strings.HasPrefix(encoded, argon2Prefix) {
		return p, ErrUnsupported
	}
	fields := strings.Split(strings.TrimPrefix(encoded, argon2Prefix), "$")
	if len(fields) != 4 {
		return p, fmt.Errorf("%w: expected 4 fields after the algorithm, got %d", ErrMalformedHash, len(fields))
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil || version != argon2.Version {
		return p, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, fields[0])
	}
	var par uint32
	var extra string
	n, _ := fmt.Sscanf(fields[1]+",", "m=%d,t=%d,p=%d,%s", &p.Memory, &p.Time, &par, &extra)
	if n != 3 || par > 255 {
		return p, fmt.Errorf("%w: bad parameters %q", ErrMalformedHash, fields[1])
	}
	p.Parallelism = uint8(par)
	if p.Memory < floor.Memory || p.Time < floor.Time || p.Parallelism < floor.Parallelism {
		return p, fmt.Errorf("%w: parameters below floor %q", ErrMalformedHash, fields[1])
	}

	var err error
	if p.salt, err = decodeB64(fields[2]); err != nil || len(p.salt) < int(floor.SaltLength) {
		return p, fmt.Errorf("%w: bad salt", ErrMalformedHash)
	}
	if p.key, err = decodeB64(fields[3]); err != nil || len(p.key) == 0 {
		return p, fmt.Errorf("%w: bad key", ErrMalformedHash)
	}
	p.SaltLength = uint32(len(p.salt))
	p.KeyLength = uint32(len(p.key))
	return p, nil
}

// decodeB64 accepts padded and unpadded standard base64; PHC strings are unpadded but
// older encoders pad.
func decodeB64(s string) ([]byte, error) {
	return b64.DecodeString(strings.TrimRight(s, "="))
}
