package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gamer42@pixele.gg", "g******@******.gg"},
		{"a@b.io", "a@*.io"},
		{"not-an-email", "[invalid-email]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizedEmail(tt.in))
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("password=hunter2"))
	assert.True(t, SanitizeQueryString("verificationCode=123456"))
	assert.True(t, SanitizeQueryString("email=gamer42%40pixele.gg"))
	assert.False(t, SanitizeQueryString("username=gamer42"))
	assert.False(t, SanitizeQueryString(""))
}
