package api

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/voicelink/pkg/accounts"
	"github.com/urmzd/voicelink/pkg/backend"
	"github.com/urmzd/voicelink/pkg/catalog"
	"github.com/urmzd/voicelink/pkg/config"
	"github.com/urmzd/voicelink/pkg/db"
	"github.com/urmzd/voicelink/pkg/device"
	"github.com/urmzd/voicelink/pkg/oauth"
	"github.com/urmzd/voicelink/pkg/provider"
	"golang.org/x/crypto/bcrypt"
)

// memController keeps device state in memory
type memController struct {
	mu     sync.Mutex
	states map[string]backend.State
}

func (m *memController) GetDeviceState(_ context.Context, topic string) (backend.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[topic]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return maps.Clone(state), nil
}

func (m *memController) SetDeviceState(_ context.Context, topic string, state map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states[topic] == nil {
		m.states[topic] = backend.State{}
	}
	maps.Copy(m.states[topic], state)
	return nil
}

func (m *memController) IsConnected() bool { return true }

func (m *memController) Close() {}

type host struct {
	router     *Router
	controller *memController
}

func newHost(t *testing.T) *host {
	t.Helper()

	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "voicelink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Accounts.Users = []config.UserConfig{{Name: "alice", PasswordHash: string(hash)}}
	cfg.Devices = []config.DeviceConfig{{
		ID:   "lamp",
		Name: "Lamp",
		Type: "devices.types.light",
		Capabilities: []config.CapabilityConfig{
			{Type: device.CapabilityOnOff},
			{Type: device.CapabilityRange, Parameters: &device.Parameters{
				Instance: "brightness",
				Range:    &device.Range{Min: 1, Max: 100, Precision: 1},
			}},
		},
	}}

	ctrl := &memController{states: map[string]backend.State{
		"lamp": {"on": true, "brightness": float64(40)},
	}}

	cat, err := catalog.New(cfg, ctrl, zerolog.Nop())
	require.NoError(t, err)

	manager, err := accounts.NewManager(store, accounts.Options{
		Users:     cfg.PasswordHashes(),
		JWTSecret: []byte("test-secret-key-at-least-32-chars!"),
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	oauthSvc, err := oauth.New(oauth.Config{
		Client:            "platform",
		Secret:            "s3cret",
		AuthorizationPage: &oauth.AuthorizationPage{Type: oauth.PageCallback, URL: "https://login.example.com"},
		Callbacks:         manager.Callbacks(),
	}, zerolog.Nop())
	require.NoError(t, err)

	return &host{
		router: NewRouter(Options{
			Provider:   provider.New(cat, provider.Options{Logger: zerolog.Nop()}),
			OAuth:      oauthSvc,
			Controller: ctrl,
			Unlink:     manager.Unlink,
		}),
		controller: ctrl,
	}
}

func (h *host) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.router.Handler().ServeHTTP(w, req)
	return w
}

func (h *host) link(t *testing.T) oauth.TokenResponse {
	t.Helper()
	const redirect = "https://platform.example.com/callback"

	w := serve(h.router, http.MethodGet, "/oauth?client_id=platform&redirect_uri="+url.QueryEscape(redirect)+"&state=xyz", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	consent, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth", consent.Path)
	assert.Equal(t, redirect, consent.Query().Get("redirect"))

	w = h.postForm("/oauth/authorize", url.Values{
		"username": {"alice"},
		"password": {"hunter2"},
		"redirect": {consent.Query().Get("redirect")},
		"state":    {consent.Query().Get("state")},
	})
	require.Equal(t, http.StatusFound, w.Code)
	back, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "platform.example.com", back.Host)
	assert.Equal(t, "xyz", back.Query().Get("state"))
	code := back.Query().Get("code")
	require.Len(t, code, oauth.DefaultCodeLength)

	w = h.postForm("/oauth/token", url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {"platform"},
		"client_secret": {"s3cret"},
		"code":          {code},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var tokens oauth.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, oauth.DefaultLifetime, tokens.ExpiresIn)
	return tokens
}

func TestFlow_LinkControlUnlink(t *testing.T) {
	h := newHost(t)
	tokens := h.link(t)

	w := serve(h.router, http.MethodGet, "/v1.0/user/devices", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"alice"`)
	assert.Contains(t, w.Body.String(), `"id":"lamp"`)

	w = serve(h.router, http.MethodPost, "/v1.0/user/devices/action", tokens.AccessToken, `{"payload":{"devices":[{
		"id": "lamp",
		"capabilities": [
			{"type": "devices.capabilities.on_off", "state": {"instance": "on", "value": false}},
			{"type": "devices.capabilities.range", "state": {"instance": "brightness", "value": 10, "relative": true}}
		]
	}]}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "ERROR")

	state, err := h.controller.GetDeviceState(context.Background(), "lamp")
	require.NoError(t, err)
	assert.Equal(t, backend.State{"on": false, "brightness": float64(50)}, state)

	w = serve(h.router, http.MethodPost, "/v1.0/user/devices/query", tokens.AccessToken, `{"devices":[{"id":"lamp"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `{"instance":"on","value":false}`)
	assert.Contains(t, w.Body.String(), `{"instance":"brightness","value":50}`)

	w = h.postForm("/oauth/refresh", url.Values{
		"client_secret": {"s3cret"},
		"refresh_token": {tokens.RefreshToken},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed oauth.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, tokens.RefreshToken, refreshed.RefreshToken)

	w = serve(h.router, http.MethodGet, "/v1.0/user/devices", refreshed.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(h.router, http.MethodPost, "/v1.0/user/unlink", refreshed.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	for _, token := range []string{tokens.AccessToken, refreshed.AccessToken} {
		w = serve(h.router, http.MethodGet, "/v1.0/user/devices", token, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	}

	w = h.postForm("/oauth/refresh", url.Values{
		"client_secret": {"s3cret"},
		"refresh_token": {tokens.RefreshToken},
	})
	assert.JSONEq(t, `{"error":"invalid_grant"}`, w.Body.String())
}

func TestFlow_CodeIsSingleUse(t *testing.T) {
	h := newHost(t)

	w := h.postForm("/oauth/authorize", url.Values{
		"username": {"alice"},
		"password": {"hunter2"},
		"redirect": {"https://platform.example.com/callback"},
		"state":    {"s"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	back, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	exchange := url.Values{"client_secret": {"s3cret"}, "code": {back.Query().Get("code")}}
	w = h.postForm("/oauth/token", exchange)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")

	w = h.postForm("/oauth/token", exchange)
	assert.JSONEq(t, `{"error":"invalid_grant"}`, w.Body.String())
}

func TestFlow_BadPassword(t *testing.T) {
	h := newHost(t)

	w := h.postForm("/oauth/authorize", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
		"redirect": {"https://platform.example.com/callback"},
		"state":    {"s"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	back, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth", back.Path)
	assert.Equal(t, "access_denied", back.Query().Get("error"))
	assert.Empty(t, back.Query().Get("code"))
}

func TestFlow_HealthWithBackend(t *testing.T) {
	h := newHost(t)

	w := serve(h.router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"backend":"connected"`)
}
