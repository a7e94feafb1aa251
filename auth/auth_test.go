package auth

import (
	"chat-relay/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPassword_Hash_And_Compare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Str0ng!Passw0rd")
	req.NoError(err)
	req.Contains(hash, "$argon2id$")

	match, err := ComparePassword("Str0ng!Passw0rd", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong-password", hash)
	req.NoError(err)
	req.False(match)
}

func TestPassword_Hashes_Are_Salted(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("Str0ng!Passw0rd")
	req.NoError(err)
	second, err := HashPassword("Str0ng!Passw0rd")
	req.NoError(err)

	// Same password, different salt, different hash
	req.NotEqual(first, second)
}

func TestComparePassword_Rejects_Garbage_Hash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-an-argon2-hash")
	req.Error(err)
}

func TestToken_Roundtrip(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("alice", time.Hour)
	req.NoError(err)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("alice", claims.Username)
	req.Equal("chat-relay", claims.Issuer)
}

func TestToken_Expired_Is_Rejected(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("alice", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

func TestToken_Tampered_Is_Rejected(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("alice", time.Hour)
	req.NoError(err)

	_, err = ValidateToken(token + "x")
	req.Error(err)
}

func TestValidateRegister(t *testing.T) {
	req := require.New(t)

	// A compliant request passes
	req.NoError(ValidateRegister(RegisterRequest{Username: "alice", Password: "Str0ng!Passw0rd"}))

	// Too short a username
	req.Error(ValidateRegister(RegisterRequest{Username: "al", Password: "Str0ng!Passw0rd"}))

	// Non-alphanumeric username
	req.Error(ValidateRegister(RegisterRequest{Username: "alice!", Password: "Str0ng!Passw0rd"}))

	// Long enough but missing character classes
	err := ValidateRegister(RegisterRequest{Username: "alice", Password: "alllowercasepassword"})
	req.ErrorIs(err, errors.ErrInvalidPassword)

	// Complex but too short
	req.Error(ValidateRegister(RegisterRequest{Username: "alice", Password: "S3cr3t!"}))
}
