package repository

import (
	"context"

	"logsync-service/internal/domain/entity"

	"golang.org/x/oauth2"
)

// TelemetryRepository defines the client side of the remote device
// gateway: authentication and the two-way event fetch RPC.
type TelemetryRepository interface {
	// Authenticate obtains a gateway token for the device, reusing a
	// cached one while it is still valid. Fails with *entity.AuthError.
	Authenticate(ctx context.Context, device *entity.Device) (*oauth2.Token, error)

	// Refresh discards any cached token for the device and obtains a
	// fresh one. Used after the gateway answers with a 401-class status.
	Refresh(ctx context.Context, device *entity.Device) (*oauth2.Token, error)

	// FetchEvents calls the gateway RPC for the device and returns the
	// raw record array. Fails with entity.ErrAuthExpired on a 401-class
	// response and *entity.FetchError on timeout or transport errors.
	FetchEvents(ctx context.Context, device *entity.Device, token *oauth2.Token) ([]entity.RawRecord, error)
}
