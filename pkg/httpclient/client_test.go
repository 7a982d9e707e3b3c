package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AppliesConfig(t *testing.T) {
	c := New(Config{Timeout: 5 * time.Second, MaxConnsPerHost: 7})
	assert.Equal(t, 5*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, tr.MaxConnsPerHost)
}

func TestNew_ZeroConfigUsesDefaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultConfig().Timeout, c.Timeout)
}

func TestNew_Roundtrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := New(DefaultConfig()).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
