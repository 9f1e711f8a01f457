// Package security contains password hashing and bearer token signing
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var ErrInvalidHash = errors.New("invalid hash format")

// ArgonHash holds the argon2id cost parameters used for new hashes. Stored
// hashes carry their own parameters, so changing these never breaks
// existing records.
type ArgonHash struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	dummyOnce sync.Once
	dummy     string
	dummyErr  error
}

// New returns a hasher with production parameters. It fails when the dummy
// hash used by VerifyDummy can't be generated.
func New() (*ArgonHash, error) {
	a := &ArgonHash{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}

	if _, err := a.dummyHash(); err != nil {
		return nil, err
	}

	return a, nil
}

// dummyHash generates the hash VerifyDummy checks against on first use
func (a *ArgonHash) dummyHash() (string, error) {
	a.dummyOnce.Do(func() {
		a.dummy, a.dummyErr = a.GenerateFromPassword("dummy-password-never-matches")
		if a.dummyErr != nil {
			a.dummyErr = fmt.Errorf("failed to generate dummy hash, %w", a.dummyErr)
		}
	})

	return a.dummy, a.dummyErr
}

// GenerateFromPassword hashes p with a fresh random salt and returns the
// PHC-style encoding $argon2id$v=19$m=..,t=..,p=..$salt$hash
func (a *ArgonHash) GenerateFromPassword(p string) (encoded string, err error) {
	salt, err := genRandByt(a.SaltLength)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(p), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded = fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Iterations, a.Parallelism, b64Salt, b64Hash)

	return encoded, nil
}

// VerifyPasswd compares a password p with the stored PHC-style encoded hash e
func (a *ArgonHash) VerifyPasswd(p, e string) (ok bool, err error) {
	parts := strings.Split(e, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}

	if version != argon2.Version {
		return false, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var memory, iterations uint32
	var parallelism uint8

	_, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrInvalidHash
	}

	calcHash := argon2.IDKey([]byte(p), salt, iterations, memory, parallelism, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, calcHash) == 1, nil
}

// VerifyDummy burns the same amount of work as a real verification. Login
// calls it for unknown usernames so both failure paths look alike.
func (a *ArgonHash) VerifyDummy(p string) {
	dummy, err := a.dummyHash()
	if err != nil {
		zap.L().Error("Login timing is not equalized", zap.Error(err))
		return
	}

	a.VerifyPasswd(p, dummy)
}

func genRandByt(n uint32) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}

	return b, nil
}
