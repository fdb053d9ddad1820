package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New()

	_, ok := c.Get("posts:0:5:anon")
	assert.False(t, ok)

	c.Set("posts:0:5:anon", 42)
	v, ok := c.Get("posts:0:5:anon")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	c.Set("posts:0:5:anon", "replaced")
	v, _ = c.Get("posts:0:5:anon")
	assert.Equal(t, "replaced", v)
	assert.Equal(t, 1, c.Len())
}

func TestInvalidatePrefix(t *testing.T) {
	c := New()
	c.Set("posts:0:5:anon", 1)
	c.Set("posts:5:5:viewer-3", 2)
	c.Set("stories:active", 3)

	c.Invalidate("posts")

	_, ok := c.Get("posts:0:5:anon")
	assert.False(t, ok)
	_, ok = c.Get("posts:5:5:viewer-3")
	assert.False(t, ok)

	// Other prefixes survive.
	v, ok := c.Get("stories:active")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestInvalidateNoMatches(t *testing.T) {
	c := New()
	c.Set("stories:active", 1)

	c.Invalidate("posts")
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("posts:%d", n)
			c.Set(key, n)
			c.Get(key)
			if n%4 == 0 {
				c.Invalidate("posts")
			}
		}(i)
	}
	wg.Wait()
}
