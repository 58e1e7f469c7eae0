package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	pkgerrors "github.com/friendsofgo/errors"

	"onestop-realtime/pkg/log"
)

// ClientConfig holds the identity client configuration.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// Transient failures (network errors, 5xx) are retried this many
	// times before the fetch is reported as failed. Auth rejections are
	// never retried.
	Retries    int
	RetryDelay time.Duration

	Logger log.Logger
}

type identityClient struct {
	cfg    ClientConfig
	client *http.Client
}

// NewIdentityClient creates an IdentityClient against GET <base>/auth/me.
func NewIdentityClient(cfg ClientConfig) IdentityClient {
	return &identityClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *identityClient) FetchIdentity(ctx context.Context, token string) (Identity, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			c.cfg.Logger.Warnf(ctx, "Retrying identity fetch (attempt %d/%d): %v",
				attempt, c.cfg.Retries, lastErr)
			select {
			case <-ctx.Done():
				return Identity{}, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		identity, err := c.fetchOnce(ctx, token)
		if err == nil {
			return identity, nil
		}
		if pkgerrors.Is(err, ErrUnauthorized) {
			return Identity{}, err
		}
		lastErr = err
	}
	return Identity{}, lastErr
}

func (c *identityClient) fetchOnce(ctx context.Context, token string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/auth/me", nil)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(err, "failed to build identity request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(err, "identity request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Identity{}, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Identity{}, fmt.Errorf("identity endpoint returned status %d", resp.StatusCode)
	}

	var profile map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Identity{}, pkgerrors.Wrap(err, "failed to decode identity response")
	}

	return identityFromProfile(profile), nil
}

// identityFromProfile normalizes the backend profile object. The backend
// exposes the identifier as either "id" or "_id" depending on the endpoint.
func identityFromProfile(profile map[string]any) Identity {
	identity := Identity{
		Profile: profile,
	}
	if id, ok := profile["id"].(string); ok {
		identity.ID = id
	} else if id, ok := profile["_id"].(string); ok {
		identity.ID = id
	}
	if name, ok := profile["name"].(string); ok {
		identity.Name = name
	}
	role, _ := profile["role"].(string)
	identity.Role = NormalizeRole(role)
	return identity
}
