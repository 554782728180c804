package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashRoundTrip(t *testing.T) {
	hash, err := Hash("P4$sword")
	require.NoError(t, err)
	assert.True(t, Verify("P4$sword", hash))
	assert.False(t, Verify("p4$sword", hash))
	assert.False(t, Verify("", hash))
}

func TestHashIsSalted(t *testing.T) {
	h1, err := Hash("P4$sword")
	require.NoError(t, err)
	h2, err := Hash("P4$sword")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.True(t, Verify("P4$sword", h1))
	assert.True(t, Verify("P4$sword", h2))
}

func TestVerifyMalformedHash(t *testing.T) {
	assert.False(t, Verify("P4$sword", []byte("not-a-bcrypt-hash")))
	assert.False(t, Verify("P4$sword", nil))
}
