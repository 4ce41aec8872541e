package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"
	"logsync-service/pkg/logger"

	"golang.org/x/oauth2"
)

// TelemetryClient talks to the remote device gateway: JWT login plus the
// two-way RPC that returns the raw event array for one device.
type TelemetryClient struct {
	logger     logger.Logger
	baseURL    string
	username   string
	password   string
	tokenTTL   time.Duration
	httpClient *http.Client

	mu      sync.Mutex
	sources map[uint]oauth2.TokenSource
}

// NewTelemetryClient creates a new gateway client
func NewTelemetryClient(baseURL, username, password string, timeout, tokenTTL time.Duration, logger logger.Logger) repository.TelemetryRepository {
	return &TelemetryClient{
		logger:     logger,
		baseURL:    baseURL,
		username:   username,
		password:   password,
		tokenTTL:   tokenTTL,
		httpClient: &http.Client{Timeout: timeout},
		sources:    make(map[uint]oauth2.TokenSource),
	}
}

// gatewayTokenSource obtains a fresh JWT from the gateway login endpoint.
// Wrapped in oauth2.ReuseTokenSource it refreshes only on expiry.
type gatewayTokenSource struct {
	client   *TelemetryClient
	deviceID uint
}

// Token performs the gateway login and returns the resulting token
func (s *gatewayTokenSource) Token() (*oauth2.Token, error) {
	body, err := json.Marshal(map[string]string{
		"username": s.client.username,
		"password": s.client.password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login request: %w", err)
	}

	url := fmt.Sprintf("%s/api/auth/login", s.client.baseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway login returned status %d", resp.StatusCode)
	}

	var response struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if response.Token == "" {
		return nil, fmt.Errorf("gateway login returned an empty token")
	}

	return &oauth2.Token{
		AccessToken:  response.Token,
		RefreshToken: response.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(s.client.tokenTTL),
	}, nil
}

// Authenticate returns a valid gateway token for the device, reusing the
// cached one until it expires
func (c *TelemetryClient) Authenticate(ctx context.Context, device *entity.Device) (*oauth2.Token, error) {
	token, err := c.sourceFor(device, false).Token()
	if err != nil {
		return nil, &entity.AuthError{ExternalDeviceID: device.ExternalDeviceID, Err: err}
	}
	return token, nil
}

// Refresh discards the cached token and logs in again
func (c *TelemetryClient) Refresh(ctx context.Context, device *entity.Device) (*oauth2.Token, error) {
	c.logger.Info("Refreshing gateway token", "externalDeviceId", device.ExternalDeviceID)
	token, err := c.sourceFor(device, true).Token()
	if err != nil {
		return nil, &entity.AuthError{ExternalDeviceID: device.ExternalDeviceID, Err: err}
	}
	return token, nil
}

// sourceFor returns the cached token source for the device, creating or
// replacing it as needed
func (c *TelemetryClient) sourceFor(device *entity.Device, reset bool) oauth2.TokenSource {
	c.mu.Lock()
	defer c.mu.Unlock()

	source, ok := c.sources[device.ID]
	if !ok || reset {
		source = oauth2.ReuseTokenSource(nil, &gatewayTokenSource{client: c, deviceID: device.ID})
		c.sources[device.ID] = source
	}
	return source
}

// FetchEvents calls the two-way RPC for the device and returns the raw
// record array
func (c *TelemetryClient) FetchEvents(ctx context.Context, device *entity.Device, token *oauth2.Token) ([]entity.RawRecord, error) {
	payload := map[string]interface{}{
		"method": "syncLog",
		"params": map[string]interface{}{},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, &entity.FetchError{ExternalDeviceID: device.ExternalDeviceID, Err: err}
	}

	url := fmt.Sprintf("%s/api/plugins/rpc/twoway/%s", c.baseURL, device.ExternalDeviceID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &entity.FetchError{ExternalDeviceID: device.ExternalDeviceID, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Authorization", "Bearer "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &entity.FetchError{ExternalDeviceID: device.ExternalDeviceID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, entity.ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &entity.FetchError{
			ExternalDeviceID: device.ExternalDeviceID,
			Err:              fmt.Errorf("gateway returned status %d", resp.StatusCode),
		}
	}

	var records []entity.RawRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &entity.FetchError{
			ExternalDeviceID: device.ExternalDeviceID,
			Err:              fmt.Errorf("expected a JSON array of records: %w", err),
		}
	}

	c.logger.Debug("Fetched raw records from gateway",
		"externalDeviceId", device.ExternalDeviceID,
		"count", len(records))

	return records, nil
}
