package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "10.0.0.7", ClientIP(r))

	// caller-supplied headers never choose the address
	r.Header.Set("X-Real-IP", "192.0.2.4")
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "10.0.0.7", ClientIP(r))

	r.RemoteAddr = "198.51.100.3"
	assert.Equal(t, "198.51.100.3", ClientIP(r))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := ParseID(raw)
		assert.False(t, ok, raw)
	}
}
