package games

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// TokenRefreshBuffer is how long before expiry a cached token is treated
// as stale. A token inside this window is proactively replaced rather
// than handed out.
const TokenRefreshBuffer = 60 * time.Second

// tokenManager caches a single OAuth2 client-credentials bearer token for
// the upstream and replaces it wholesale when it nears expiry. The mutex
// also collapses concurrent refreshes into one exchange.
type tokenManager struct {
	oauthURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	now          func() time.Time

	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

func newTokenManager(oauthURL, clientID, clientSecret string, httpClient *http.Client) *tokenManager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &tokenManager{
		oauthURL:     oauthURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// tokenResponse is the identity provider's exchange response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token returns a bearer token with at least TokenRefreshBuffer of
// validity remaining, performing a client-credentials exchange if the
// cached one is missing or expiring soon.
func (m *tokenManager) Token(ctx context.Context) (string, error) {
	if m.clientID == "" || m.clientSecret == "" {
		return "", ErrCredentialsMissing
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.value != "" && m.expiresAt.Sub(m.now()) > TokenRefreshBuffer {
		return m.value, nil
	}

	token, expiresIn, err := m.exchange(ctx)
	if err != nil {
		return "", err
	}

	m.value = token
	m.expiresAt = m.now().Add(time.Duration(expiresIn) * time.Second)

	slog.Info("[GATEWAY] refreshed upstream access token",
		"expires_in_seconds", expiresIn,
	)

	return m.value, nil
}

// exchange performs the client-credentials grant. The identity provider
// takes the credentials as form-style query parameters on a POST.
func (m *tokenManager) exchange(ctx context.Context) (string, int64, error) {
	params := url.Values{}
	params.Set("client_id", m.clientID)
	params.Set("client_secret", m.clientSecret)
	params.Set("grant_type", "client_credentials")

	endpoint := m.oauthURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, &TokenRequestError{Status: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", 0, &TokenRequestError{Status: resp.StatusCode, Body: "response contained no access_token"}
	}

	return tr.AccessToken, tr.ExpiresIn, nil
}
