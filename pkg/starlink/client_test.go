package starlink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestServiceLines(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/service-lines", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{
				"results": []map[string]any{
					{"serviceLineNumber": "sl-1", "nickname": "KIT7-SKR12-SITEA", "addressReferenceId": "adr-1", "active": true},
					{"serviceLineNumber": "sl-2", "nickname": "", "addressReferenceId": "adr-2", "active": false},
				},
				"isLastPage": true,
			},
		})
	}))

	page, err := c.ServiceLines(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, page.IsLastPage)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "sl-1", page.Results[0].ServiceLineNumber)
	assert.Equal(t, "KIT7-SKR12-SITEA", page.Results[0].Nickname)
	assert.True(t, page.Results[0].Active)
	assert.False(t, page.Results[1].Active)
}

func TestAddressesNullCoordinates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{
				"results": []map[string]any{
					{"addressReferenceId": "adr-1", "latitude": 40.0, "longitude": -70.0},
					{"addressReferenceId": "adr-2", "latitude": nil, "longitude": nil},
				},
				"isLastPage": true,
			},
		})
	}))

	page, err := c.Addresses(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	require.NotNil(t, page.Results[0].Latitude)
	assert.InDelta(t, 40.0, *page.Results[0].Latitude, 1e-9)
	assert.Nil(t, page.Results[1].Latitude)
	assert.Nil(t, page.Results[1].Longitude)
}

func TestUpdateNickname(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/service-lines/sl-1/nickname", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))

	err := c.UpdateNickname(context.Background(), "sl-1", "KIT7-SKR12-SITEA")
	require.NoError(t, err)
	assert.Equal(t, "KIT7-SKR12-SITEA", gotBody["nickname"])
}

func TestUpdateNicknameRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))

	err := c.UpdateNickname(context.Background(), "sl-1", "x")
	assert.Error(t, err)
}

func TestRetryOnTransientFailure(t *testing.T) {
	var calls atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{"results": []map[string]any{}, "isLastPage": true},
		})
	}))

	page, err := c.ServiceLines(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, page.IsLastPage)
	assert.Equal(t, int64(2), calls.Load())
}

func TestServiceLinesBadStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := c.ServiceLines(context.Background(), 0)
	assert.Error(t, err)
}
