// Package coreclient holds the narrow internal HTTP calls the messaging
// service makes against the core service. Calls use a short timeout and a
// timeout is a hard failure, never a retryable soft one, so an internal
// outage cannot queue requests without bound.
package coreclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// MembershipResult mirrors the core service's clan membership answer.
type MembershipResult struct {
	IsMember bool   `json:"isMember"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// BlockCheckResult mirrors the core service's block-relation answer.
type BlockCheckResult struct {
	ABlocksB   bool `json:"aBlocksB"`
	BBlocksA   bool `json:"bBlocksA"`
	AnyBlocked bool `json:"anyBlocked"`
}

// Client calls the core service's internal endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates the client. timeout bounds every call end to end.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		panic("base URL cannot be empty for core Client")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Membership asks whether userID belongs to clanID and in which role.
func (c *Client) Membership(ctx context.Context, clanID, userID string) (*MembershipResult, error) {
	path := fmt.Sprintf("/internal/clans/%s/members/%s", url.PathEscape(clanID), url.PathEscape(userID))
	var result MembershipResult
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BlockCheck asks for the block relation between two users.
func (c *Client) BlockCheck(ctx context.Context, userAID, userBID string) (*BlockCheckResult, error) {
	path := fmt.Sprintf("/internal/users/%s/blocked/%s", url.PathEscape(userAID), url.PathEscape(userBID))
	var result BlockCheckResult
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClanMemberActive is the convenience form used to confirm a member's
// standing before their conversation row is activated.
func (c *Client) ClanMemberActive(ctx context.Context, clanID, userID string) (bool, error) {
	result, err := c.Membership(ctx, clanID, userID)
	if err != nil {
		return false, err
	}
	return result.IsMember && result.Status == "ACTIVE", nil
}

// AnyBlocked is the convenience form used to gate DM creation.
func (c *Client) AnyBlocked(ctx context.Context, userAID, userBID string) (bool, error) {
	result, err := c.BlockCheck(ctx, userAID, userBID)
	if err != nil {
		return false, err
	}
	return result.AnyBlocked, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("coreclient: build request %s: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("coreclient: call %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coreclient: call %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("coreclient: decode response from %s: %w", path, err)
	}
	return nil
}
