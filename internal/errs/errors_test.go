package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWrapsStoreFailures(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Fetch("feed.GetPage", cause)

	require.Error(t, err)
	assert.True(t, IsFetchFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "feed.GetPage")
}

func TestFetchPassesSentinelsThrough(t *testing.T) {
	err := Fetch("feed.LikePost", NotFound)

	assert.ErrorIs(t, err, NotFound)
	assert.False(t, IsFetchFailure(err))
}

func TestFetchNil(t *testing.T) {
	assert.NoError(t, Fetch("feed.GetPage", nil))
}

func TestSentinelsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(NotFound, Duplicate))
	assert.False(t, errors.Is(Duplicate, Forbidden))
	assert.True(t, errors.Is(fmt.Errorf("create: %w", Duplicate), Duplicate))
}
