package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashService_HashAndVerify(t *testing.T) {
	s := NewHashService()

	encoded, err := s.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := s.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashService_HashesAreSalted(t *testing.T) {
	s := NewHashService()

	a, err := s.Hash("same password")
	require.NoError(t, err)
	b, err := s.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashService_Verify_MalformedHash(t *testing.T) {
	s := NewHashService()

	_, err := s.Verify("anything", "not-a-hash")
	assert.Error(t, err)

	_, err = s.Verify("anything", "$bcrypt$whatever$x$y$z")
	assert.Error(t, err)
}
