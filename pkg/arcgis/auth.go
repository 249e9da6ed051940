package arcgis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sigab-tools/rotacio-diff/pkg/cache"
)

// Session is an authenticated (or anonymous) handle on a portal.
type Session struct {
	Portal   string
	Username string
	Token    string
	Expires  time.Time
	Referer  string
}

// Anonymous reports whether requests are sent without a token.
func (s *Session) Anonymous() bool {
	return s.Token == ""
}

type tokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"` // epoch milliseconds
	SSL     bool   `json:"ssl"`
}

// TokenURL returns the generateToken endpoint of a portal.
func TokenURL(portalURL string) string {
	return strings.TrimRight(portalURL, "/") + "/sharing/rest/generateToken"
}

// Login opens a session on portalURL. An empty username yields an anonymous
// session. With a token cache configured, a cached token is reused while valid.
func (c *Client) Login(ctx context.Context, portalURL, username, password string) (*Session, error) {
	referer := c.config.Referer
	if referer == "" {
		referer = portalURL
	}

	session := &Session{
		Portal:   portalURL,
		Username: username,
		Referer:  referer,
	}

	if username == "" {
		c.logger.Info().Str("portal", portalURL).Msg("Using anonymous session")
		return session, nil
	}

	key := cache.Key{Portal: portalURL, Username: username}
	if c.tokens != nil {
		entry, err := c.tokens.Get(ctx, key)
		switch {
		case err == nil:
			c.logger.Debug().
				Str("portal", portalURL).
				Dur("ttl", entry.TTL()).
				Msg("Using cached token")
			session.Token = entry.Token
			session.Expires = entry.Expires
			return session, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("portal", portalURL).Msg("Token cache get error")
		}
	}

	form := url.Values{
		"username":   {username},
		"password":   {password},
		"client":     {"referer"},
		"referer":    {referer},
		"expiration": {strconv.Itoa(int(c.config.TokenExpiration / time.Minute))},
		"f":          {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, TokenURL(portalURL), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResponse
	if err := c.Do(req, &tr); err != nil {
		// The portal rejects bad credentials with a plain 400.
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.ErrorClass == ErrorClassClient {
			svcErr.ErrorClass = ErrorClassAuth
		}
		return nil, fmt.Errorf("generate token for %s: %w", portalURL, err)
	}
	if tr.Token == "" {
		return nil, fmt.Errorf("generate token for %s: %w", portalURL, ErrMissingToken)
	}

	session.Token = tr.Token
	if tr.Expires > 0 {
		session.Expires = time.UnixMilli(tr.Expires)
	} else {
		session.Expires = time.Now().Add(c.config.TokenExpiration)
	}

	c.logger.Info().
		Str("portal", portalURL).
		Str("username", username).
		Time("expires", session.Expires).
		Msg("Token generated")

	if c.tokens != nil {
		entry := &cache.Entry{
			Token:    session.Token,
			Expires:  session.Expires,
			CachedAt: time.Now(),
		}
		if err := c.tokens.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache token")
		}
	}

	return session, nil
}
