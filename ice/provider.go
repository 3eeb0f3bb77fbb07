package ice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"
)

// Server describes one ICE server entry as returned by the credential
// endpoint. The urls field may be a single string or an array; both forms are
// accepted.
type Server struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// UnmarshalJSON accepts urls as either a JSON string or a string array.
func (s *Server) UnmarshalJSON(data []byte) error {
	var raw struct {
		URLs       json.RawMessage `json:"urls"`
		Username   string          `json:"username"`
		Credential string          `json:"credential"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Username = raw.Username
	s.Credential = raw.Credential
	s.URLs = nil

	if len(raw.URLs) == 0 {
		return fmt.Errorf("ice server entry missing urls")
	}
	var single string
	if err := json.Unmarshal(raw.URLs, &single); err == nil {
		s.URLs = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw.URLs, &many); err != nil {
		return fmt.Errorf("ice server urls: %w", err)
	}
	s.URLs = many
	return nil
}

// DefaultServers returns the public STUN-only fallback list.
func DefaultServers() []Server {
	return []Server{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
		{URLs: []string{"stun:stun1.l.google.com:19302"}},
	}
}

// WebRTC converts a server list into the pion configuration form.
func WebRTC(servers []Server) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		entry := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			entry.Username = s.Username
			entry.Credential = s.Credential
		}
		out = append(out, entry)
	}
	return out
}

// Provider fetches and caches the ICE server list. The result of the first
// successful fetch is reused for the provider's lifetime so a call session
// performs at most one credential request regardless of peer count.
type Provider struct {
	endpoint string
	apiKey   string
	client   *http.Client

	mu     sync.Mutex
	cached []Server
}

// NewProvider creates a provider for the given credential endpoint. Either
// argument may be empty, in which case Servers always returns the fallback
// list. httpClient may be nil; a client with a short timeout is used then.
func NewProvider(endpoint, apiKey string, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   httpClient,
	}
}

// Servers returns the ICE server list for this session. It never fails: on
// any fetch error the public STUN fallback is returned (and not cached, so a
// later session may retry the credential fetch).
func (p *Provider) Servers(ctx context.Context) []Server {
	p.mu.Lock()
	if p.cached != nil {
		servers := p.cached
		p.mu.Unlock()
		return servers
	}
	p.mu.Unlock()

	servers, err := p.fetch(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Servers",
			"endpoint": p.endpoint,
			"error":    err.Error(),
		}).Warn("TURN credential fetch failed, using STUN fallback")
		return DefaultServers()
	}

	p.mu.Lock()
	p.cached = servers
	p.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":     "Servers",
		"server_count": len(servers),
	}).Info("Fetched dynamic ICE servers")
	return servers
}

// Invalidate clears the cached server list so the next Servers call fetches
// fresh TURN credentials. Called once per join attempt, since TURN
// credentials are time limited.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

func (p *Provider) fetch(ctx context.Context) ([]Server, error) {
	if p.endpoint == "" {
		return nil, fmt.Errorf("no credential endpoint configured")
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", p.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("credential endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var servers []Server
	if err := json.Unmarshal(body, &servers); err != nil {
		return nil, fmt.Errorf("decode server list: %w", err)
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("credential endpoint returned an empty list")
	}
	return servers, nil
}
