package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:4312"
	assert.Equal(t, "203.0.113.7", RealClientIP(r))

	// No port part
	r.RemoteAddr = " 203.0.113.7 "
	assert.Equal(t, "203.0.113.7", RealClientIP(r))
}

func TestRealClientIP_IgnoresForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:4312"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.7", RealClientIP(r))
}
