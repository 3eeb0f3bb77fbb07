package ice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServersFetchesAndCaches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "k1", r.URL.Query().Get("apiKey"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"urls": "turn:relay.example.org:443?transport=tcp", "username": "u", "credential": "c"},
			{"urls": []string{"stun:stun.example.org:3478"}},
		})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "k1", srv.Client())
	servers := p.Servers(context.Background())
	require.Len(t, servers, 2)
	assert.Equal(t, []string{"turn:relay.example.org:443?transport=tcp"}, servers[0].URLs)
	assert.Equal(t, "u", servers[0].Username)

	// Second call must reuse the cache, not re-fetch per peer.
	p.Servers(context.Background())
	assert.Equal(t, 1, calls)

	p.Invalidate()
	p.Servers(context.Background())
	assert.Equal(t, 2, calls)
}

func TestServersFallsBackOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "bad-key", srv.Client())
	assert.Equal(t, DefaultServers(), p.Servers(context.Background()))
}

func TestServersFallsBackWithoutAPIKey(t *testing.T) {
	p := NewProvider("https://relay.example.org/api/v1/turn/credentials", "", nil)
	assert.Equal(t, DefaultServers(), p.Servers(context.Background()))
}

func TestServersFallsBackOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "k1", srv.Client())
	assert.Equal(t, DefaultServers(), p.Servers(context.Background()))
}

func TestWebRTCConversionKeepsCredentials(t *testing.T) {
	out := WebRTC([]Server{
		{URLs: []string{"turn:r.example.org"}, Username: "u", Credential: "c"},
		{URLs: []string{"stun:s.example.org"}},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "u", out[0].Username)
	assert.Equal(t, "c", out[0].Credential)
	assert.Nil(t, out[1].Credential)
}

func TestServerUnmarshalRejectsMissingURLs(t *testing.T) {
	var s Server
	err := json.Unmarshal([]byte(`{"username":"u"}`), &s)
	assert.Error(t, err)
}
