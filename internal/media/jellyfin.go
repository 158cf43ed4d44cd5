package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"streambot/pkg/retry"

	"golang.org/x/time/rate"
)

// JellyfinClient resolves library items on a Jellyfin server. The core only
// needs a display name and a direct stream URL per item.
type JellyfinClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	retryCfg retry.Config
}

func NewJellyfinClient(baseURL, apiKey string) *JellyfinClient {
	cfg := retry.DefaultConfig()
	cfg.Limiter = rate.NewLimiter(rate.Limit(5), 5)
	return &JellyfinClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryCfg: cfg,
	}
}

// Item looks the reference up by name and returns the first match. Server
// errors are retried; a clean "no match" is not.
func (c *JellyfinClient) Item(ctx context.Context, ref string) (*RemoteItem, error) {
	var item *RemoteItem
	err := retry.Do(ctx, c.retryCfg, func() error {
		var err error
		item, err = c.search(ctx, ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (c *JellyfinClient) search(ctx context.Context, ref string) (*RemoteItem, error) {
	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("searchTerm", ref)
	q.Set("IncludeItemTypes", "Movie,Episode")
	q.Set("Recursive", "true")
	q.Set("Limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/Items?"+q.Encode(), nil)
	if err != nil {
		return nil, &retry.Permanent{Err: err}
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("jellyfin search failed with status %d", resp.StatusCode)
	default:
		return nil, &retry.Permanent{Err: fmt.Errorf("jellyfin search failed with status %d", resp.StatusCode)}
	}

	var result struct {
		Items []struct {
			ID   string `json:"Id"`
			Name string `json:"Name"`
		} `json:"Items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, &retry.Permanent{Err: errors.New("no matching item on media server")}
	}

	found := result.Items[0]
	streamURL := fmt.Sprintf("%s/Videos/%s/stream?static=true&api_key=%s", c.BaseURL, found.ID, c.APIKey)
	return &RemoteItem{Name: found.Name, StreamURL: streamURL}, nil
}
