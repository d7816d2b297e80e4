package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyPassword(t *testing.T) {
	assert.True(t, VerifyPassword(testPassword, testPasswordHash))
	assert.False(t, VerifyPassword("SenhaErrada1!", testPasswordHash))
	assert.False(t, VerifyPassword("", testPasswordHash))
	assert.False(t, VerifyPassword(testPassword, "not-a-bcrypt-hash"))
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	first, err := HashPassword("OutraSenha1!")
	assert.NoError(t, err)
	second, err := HashPassword("OutraSenha1!")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("OutraSenha1!", first))
	assert.True(t, VerifyPassword("OutraSenha1!", second))
}

func TestVerifyDummyPasswordAlwaysFails(t *testing.T) {
	assert.False(t, VerifyDummyPassword(testPassword))
	assert.False(t, VerifyDummyPassword(""))
	assert.False(t, VerifyDummyPassword("sisc-timing-equalizer"))
}
