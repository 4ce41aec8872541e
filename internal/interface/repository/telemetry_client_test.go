package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsync-service/internal/domain/entity"
	"logsync-service/pkg/logger"
)

func gatewayStub(t *testing.T, loginCount *int32, fetchStatus int, records []entity.RawRecord) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			atomic.AddInt32(loginCount, 1)

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds["username"] != "tenant" || creds["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"token":        "jwt-token",
				"refreshToken": "jwt-refresh",
			})
		case "/api/plugins/rpc/twoway/abc-123":
			assert.Equal(t, "Bearer jwt-token", r.Header.Get("X-Authorization"))

			var rpc map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rpc))
			assert.Equal(t, "syncLog", rpc["method"])

			if fetchStatus != http.StatusOK {
				w.WriteHeader(fetchStatus)
				return
			}
			json.NewEncoder(w).Encode(records)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testClient(baseURL string) *TelemetryClient {
	client := NewTelemetryClient(baseURL, "tenant", "secret", 5*time.Second, 15*time.Minute, logger.NewNopLogger())
	return client.(*TelemetryClient)
}

func TestAuthenticateCachesToken(t *testing.T) {
	var logins int32
	server := gatewayStub(t, &logins, http.StatusOK, nil)
	defer server.Close()

	client := testClient(server.URL)
	device := &entity.Device{ID: 1, ExternalDeviceID: "abc-123"}
	ctx := context.Background()

	token, err := client.Authenticate(ctx, device)
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token.AccessToken)

	// Second call reuses the cached token instead of logging in again.
	_, err = client.Authenticate(ctx, device)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins))
}

func TestRefreshDiscardsCachedToken(t *testing.T) {
	var logins int32
	server := gatewayStub(t, &logins, http.StatusOK, nil)
	defer server.Close()

	client := testClient(server.URL)
	device := &entity.Device{ID: 1, ExternalDeviceID: "abc-123"}
	ctx := context.Background()

	_, err := client.Authenticate(ctx, device)
	require.NoError(t, err)

	_, err = client.Refresh(ctx, device)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&logins))
}

func TestAuthenticateBadCredentials(t *testing.T) {
	var logins int32
	server := gatewayStub(t, &logins, http.StatusOK, nil)
	defer server.Close()

	client := NewTelemetryClient(server.URL, "tenant", "wrong", 5*time.Second, 15*time.Minute, logger.NewNopLogger())
	device := &entity.Device{ID: 1, ExternalDeviceID: "abc-123"}

	_, err := client.Authenticate(context.Background(), device)
	var authErr *entity.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "abc-123", authErr.ExternalDeviceID)
}

func TestFetchEvents(t *testing.T) {
	var logins int32
	records := []entity.RawRecord{
		{"page_address": float64(1), "total_time": float64(1000)},
		{"page_address": float64(2), "total_time": float64(2000)},
	}
	server := gatewayStub(t, &logins, http.StatusOK, records)
	defer server.Close()

	client := testClient(server.URL)
	device := &entity.Device{ID: 1, ExternalDeviceID: "abc-123"}
	ctx := context.Background()

	token, err := client.Authenticate(ctx, device)
	require.NoError(t, err)

	fetched, err := client.FetchEvents(ctx, device, token)
	require.NoError(t, err)
	require.Len(t, fetched, 2)
	assert.Equal(t, float64(2), fetched[1]["page_address"])
}

func TestFetchEventsExpiredToken(t *testing.T) {
	var logins int32
	server := gatewayStub(t, &logins, http.StatusUnauthorized, nil)
	defer server.Close()

	client := testClient(server.URL)
	device := &entity.Device{ID: 1, ExternalDeviceID: "abc-123"}
	ctx := context.Background()

	token, err := client.Authenticate(ctx, device)
	require.NoError(t, err)

	_, err = client.FetchEvents(ctx, device, token)
	assert.ErrorIs(t, err, entity.ErrAuthExpired)
}

func TestFetchEventsServerError(t *testing.T) {
	var logins int32
	server := gatewayStub(t, &logins, http.StatusInternalServerError, nil)
	defer server.Close()

	client := testClient(server.URL)
	device := &entity.Device{ID: 1, ExternalDeviceID: "abc-123"}
	ctx := context.Background()

	token, err := client.Authenticate(ctx, device)
	require.NoError(t, err)

	_, err = client.FetchEvents(ctx, device, token)
	var fetchErr *entity.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "abc-123", fetchErr.ExternalDeviceID)
}
