package venus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/routers", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Router{
			{Name: "R12", Links: []Link{{ISP: "Starlink"}}},
			{Name: "R13", Links: []Link{{ISP: "Fiber"}}},
			{Name: "R14"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	routers, err := c.Routers(context.Background())
	require.NoError(t, err)
	require.Len(t, routers, 3)

	assert.True(t, routers[0].HasISP(ISPStarlink))
	assert.False(t, routers[1].HasISP(ISPStarlink))
	assert.False(t, routers[2].HasISP(ISPStarlink))
}

func TestRoutersBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	_, err := c.Routers(context.Background())
	assert.Error(t, err)
}
