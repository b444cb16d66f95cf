package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBOM(t *testing.T) {
	withBOM := []byte("\xef\xbb\xbfKEY;value;x")

	assert.True(t, HasBOM(withBOM))
	assert.False(t, HasBOM([]byte("KEY;value;x")))
	assert.False(t, HasBOM([]byte("\xef\xbb")))

	assert.Equal(t, []byte("KEY;value;x"), StripBOM(withBOM))
	assert.Equal(t, []byte("plain"), StripBOM([]byte("plain")))
}

func TestHash(t *testing.T) {
	a := Hash([]byte("content"))
	b := Hash([]byte("content"))
	c := Hash([]byte("different"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly-10", Truncate("exactly-10", 10))
	assert.Equal(t, "long strin...", Truncate("long string here", 10))
}
