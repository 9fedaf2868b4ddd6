package lastfm

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned by Scrobble before a session key is set.
var ErrNotAuthenticated = errors.New("not authenticated")

const authURL = "https://www.last.fm/api/auth/"

// Client scrobbles on behalf of one linked Last.fm account.
type Client struct {
	api        *lastfm.Api
	apiKey     string
	sessionKey string
}

// New creates a client for the application's API credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{
		api:    lastfm.New(apiKey, apiSecret),
		apiKey: apiKey,
	}
}

// SetSessionKey restores a session saved by an earlier link.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
	c.api.SetSession(key)
}

// IsAuthenticated reports whether a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// GetToken starts the authorization flow.
func (c *Client) GetToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// GetAuthURL returns the page where the user authorizes token. Last.fm
// redirects to callback afterwards when it is not empty.
func (c *Client) GetAuthURL(token, callback string) string {
	u := authURL + "?api_key=" + url.QueryEscape(c.apiKey) + "&token=" + url.QueryEscape(token)
	if callback != "" {
		u += "&cb=" + callback
	}
	return u
}

// GetSession exchanges an authorized token for a session key and keeps
// it. The username is best effort.
func (c *Client) GetSession(token string) (username, sessionKey string, err error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return "", "", fmt.Errorf("get session: %w", err)
	}
	c.sessionKey = c.api.GetSessionKey()

	info, err := c.api.User.GetInfo(nil)
	if err != nil {
		return "unknown", c.sessionKey, nil //nolint:nilerr // username is optional
	}
	return info.Name, c.sessionKey, nil
}

// Scrobble submits one listen.
func (c *Client) Scrobble(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.Scrobble(scrobbleParams(track)); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

// scrobbleParams builds the track.scrobble arguments. Album and duration
// are optional and left out when unknown.
func scrobbleParams(track ScrobbleTrack) lastfm.P {
	p := lastfm.P{
		"artist":    track.Artist,
		"track":     track.Track,
		"timestamp": track.Timestamp.Unix(),
	}
	if track.Album != "" {
		p["album"] = track.Album
	}
	if secs := int(track.Duration.Seconds()); secs > 0 {
		p["duration"] = secs
	}
	return p
}
