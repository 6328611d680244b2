package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGym_SingleAsset(t *testing.T) {
	gym, err := NewSingleAssetGym(seriesOf("AAA", 100, 100, 100), DefaultConfiguration())
	require.NoError(t, err)

	assert.Equal(t, []int{3}, gym.ActionSpace())
	assert.Equal(t, ObservationSize, gym.ObservationSize())

	obs, info := gym.Reset()
	assert.Len(t, obs, ObservationSize)
	assert.Equal(t, 100000.0, info["total_value"])
	assert.Equal(t, 0, info["total_trades"])

	obs, reward, terminated, truncated, info, err := gym.Step(1)
	require.NoError(t, err)
	assert.Len(t, obs, ObservationSize)
	assert.False(t, terminated)
	assert.False(t, truncated)
	assert.InDelta(t, 0.715, reward, 1e-9)
	assert.Equal(t, 1, info["trades"])
	assert.Equal(t, 0.475, info["position"])
	assert.Contains(t, info["assets"], "AAA")

	_, _, terminated, _, _, err = gym.Step(0)
	require.NoError(t, err)
	assert.False(t, terminated)
	_, _, terminated, _, _, err = gym.Step(0)
	require.NoError(t, err)
	assert.True(t, terminated)
}

func TestGym_Errors(t *testing.T) {
	gym := NewGym(newPortfolio(t, seriesOf("AAA", 100, 100), seriesOf("BBB", 100, 100)))
	assert.Equal(t, []int{3, 3}, gym.ActionSpace())
	assert.Equal(t, 2*ObservationSize, gym.ObservationSize())

	_, _, _, _, _, err := gym.Step(1)
	assert.ErrorIs(t, err, ErrArityMismatch)

	_, _, _, _, _, err = gym.Step(1, 3)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, _, _, _, info, err := gym.Step(2, 0)
	require.NoError(t, err)
	assert.NotContains(t, info, "position")
}
