package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "web_fetch|https://example.com", Key("web_fetch", "https://example.com"))
	assert.Equal(t, "solo", Key("solo"))
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "items|page=2|per_page=10", PageKey("items", 2, 10))

	// Different pagination parameters must never collide.
	assert.NotEqual(t, PageKey("items", 1, 20), PageKey("items", 2, 10))
}
