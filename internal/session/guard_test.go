package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	g := NewGuard()

	token, release, err := g.Acquire(KeyGenerate)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, g.Held(KeyGenerate))

	_, _, err = g.Acquire(KeyGenerate)
	assert.ErrorIs(t, err, ErrRequestInFlight)

	other, releaseOther, err := g.Acquire(KeySelect)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
	assert.Equal(t, 2, g.Active())

	release()
	release()
	assert.False(t, g.Held(KeyGenerate))
	assert.Equal(t, 1, g.Active())

	releaseOther()
	assert.Equal(t, 0, g.Active())

	_, release, err = g.Acquire(KeyGenerate)
	require.NoError(t, err)
	release()
}
