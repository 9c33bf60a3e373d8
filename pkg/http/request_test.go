package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/pixele/identity/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP_NoProxyConfig(t *testing.T) {
	r := httptest.NewRequest("POST", "/users/login", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	// Forwarding headers are ignored without a trusted proxy config.
	assert.Equal(t, "203.0.113.9", pkghttp.ExtractClientIP(r, nil))
}

func TestExtractClientIP_TrustedProxy(t *testing.T) {
	config := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	r := httptest.NewRequest("POST", "/users/login", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.1.2.3")

	assert.Equal(t, "198.51.100.1", pkghttp.ExtractClientIP(r, config))
}

func TestExtractClientIP_UntrustedProxyIgnoresHeaders(t *testing.T) {
	config := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	r := httptest.NewRequest("POST", "/users/login", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Header.Set("X-Real-IP", "198.51.100.1")

	assert.Equal(t, "203.0.113.9", pkghttp.ExtractClientIP(r, config))
}

func TestExtractClientIP_InvalidForwardedValue(t *testing.T) {
	config := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	r := httptest.NewRequest("POST", "/users/login", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Forwarded-For", "not-an-ip")

	assert.Equal(t, "10.1.2.3", pkghttp.ExtractClientIP(r, config))
}
