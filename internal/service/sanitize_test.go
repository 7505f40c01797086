package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeContent(t *testing.T) {
	t.Run("keeps common formatting tags", func(t *testing.T) {
		in := "<p>Hello <strong>world</strong></p>"
		assert.Equal(t, in, sanitizeContent(in))
	})

	t.Run("strips scripts entirely", func(t *testing.T) {
		assert.Equal(t, "", sanitizeContent("<script>alert('x')</script>"))
	})

	t.Run("drops event handlers but keeps the text", func(t *testing.T) {
		out := sanitizeContent(`<a href="http://example.com" onclick="steal()">link</a>`)
		assert.Contains(t, out, "link")
		assert.NotContains(t, out, "onclick")
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "hello", sanitizeContent("  hello  "))
	})
}

func TestGetDurationFromEnv(t *testing.T) {
	t.Run("parses a set value", func(t *testing.T) {
		t.Setenv("TEST_COOLDOWN", "30s")
		assert.Equal(t, "30s", GetDurationFromEnv("TEST_COOLDOWN", 0).String())
	})

	t.Run("falls back when unset", func(t *testing.T) {
		assert.Equal(t, 15*time.Second, GetDurationFromEnv("TEST_COOLDOWN_UNSET", 15*time.Second))
	})

	t.Run("falls back on garbage", func(t *testing.T) {
		t.Setenv("TEST_COOLDOWN", "soon")
		assert.Equal(t, time.Minute, GetDurationFromEnv("TEST_COOLDOWN", time.Minute))
	})
}
