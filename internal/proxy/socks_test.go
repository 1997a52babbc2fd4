package proxy

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Direct(t *testing.T) {
	c, err := NewHTTPClient("", 30*time.Second)
	require.NoError(t, err)
	assert.Nil(t, c.Transport)
	assert.Equal(t, 30*time.Second, c.Timeout)
}

func TestNewHTTPClient_Socks(t *testing.T) {
	c, err := NewHTTPClient("127.0.0.1:1080", time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &http.Transport{}, c.Transport)
}
