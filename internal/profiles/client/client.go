package profilesclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dkravets/nestswap-messenger/internal/config"
	profilesdomain "github.com/dkravets/nestswap-messenger/internal/profiles"
)

// Client reads member profiles from the content store over its HTTP/JSON
// API. The store is an external collaborator; this client never writes.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg config.ContentStore) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) ProfileByEmail(ctx context.Context, email string) (profilesdomain.Profile, error) {
	const op = "profiles.client.ProfileByEmail"

	u := fmt.Sprintf("%s/profiles?email=%s", c.baseURL, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return profilesdomain.Profile{}, fmt.Errorf("%s: build request: %w", op, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return profilesdomain.Profile{}, fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return profilesdomain.Profile{}, profilesdomain.ErrProfileNotFound
	case resp.StatusCode != http.StatusOK:
		return profilesdomain.Profile{}, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var profile profilesdomain.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profilesdomain.Profile{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	return profile, nil
}
