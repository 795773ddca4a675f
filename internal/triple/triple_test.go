package triple

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"armv7-unknown-linux-gnueabihf", "arm-linux-gnueabihf"},
		{"x86_64-unknown-linux-gnu", "x86_64-unknown-linux-gnu"},
		{"aarch64-unknown-linux-gnu", "aarch64-unknown-linux-gnu"},
		{"arm-linux-gnueabihf", "arm-linux-gnueabihf"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.in))
		})
	}
}

func TestTableHasSingleEntry(t *testing.T) {
	assert.Len(t, translations, 1)
	assert.Contains(t, translations, "armv7-unknown-linux-gnueabihf")
}

func TestCrossHost(t *testing.T) {
	t.Run("native", func(t *testing.T) {
		got, ok := CrossHost("x86_64-unknown-linux-gnu", "x86_64-unknown-linux-gnu")
		assert.False(t, ok)
		assert.Empty(t, got)
	})

	t.Run("translated", func(t *testing.T) {
		got, ok := CrossHost("x86_64-unknown-linux-gnu", "armv7-unknown-linux-gnueabihf")
		assert.True(t, ok)
		assert.Equal(t, "arm-linux-gnueabihf", got)
	})

	t.Run("passthrough", func(t *testing.T) {
		got, ok := CrossHost("x86_64-unknown-linux-gnu", "aarch64-unknown-linux-gnu")
		assert.True(t, ok)
		assert.Equal(t, "aarch64-unknown-linux-gnu", got)
	})
}
