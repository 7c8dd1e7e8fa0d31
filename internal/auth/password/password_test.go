package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("tindahan-secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	assert.True(t, Verify("tindahan-secret", encoded))
	assert.False(t, Verify("tindahan-Secret", encoded))
	assert.False(t, Verify("", encoded))
}

func TestHash_SaltsDiffer(t *testing.T) {
	a, err := Hash("same-password")
	require.NoError(t, err)
	b, err := Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_MalformedEncoding(t *testing.T) {
	assert.False(t, Verify("x", ""))
	assert.False(t, Verify("x", "$argon2id$v=19$garbage"))
	assert.False(t, Verify("x", "plaintext"))
}
