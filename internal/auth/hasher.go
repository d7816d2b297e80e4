package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 12

// dummyHash is a bcrypt hash of an unguessable throwaway value, compared
// against when no account matches the submitted email so that the response
// time does not reveal whether the email exists.
var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("sisc-timing-equalizer"), hashCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return hash
}()

func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// VerifyDummyPassword burns the same bcrypt cost as a real verification and
// always fails.
func VerifyDummyPassword(plaintext string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plaintext))
	return false
}
