package vinted

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDCookie      = "v_uid"
	accessTokenCookie = "access_token_web"
)

// ResolveIdentity returns the logged-in user id. It prefers the numeric
// v_uid cookie and falls back to the "sub" claim of the access_token_web JWT.
//
// The JWT signature is not verified. Possession of the browser session
// cookie is what authenticates the caller; the claim is only read to learn
// which wardrobe to list, and the server re-checks every request anyway.
func (c *Client) ResolveIdentity() (int64, error) {
	if id, ok := parseUserID(c.Cookie(userIDCookie)); ok {
		return id, nil
	}

	token := c.Cookie(accessTokenCookie)
	if token == "" {
		return 0, ErrIdentityUnresolved
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		c.log.Debug("access token is not a readable JWT", "err", err)
		return 0, ErrIdentityUnresolved
	}

	switch sub := claims["sub"].(type) {
	case string:
		if id, ok := parseUserID(sub); ok {
			return id, nil
		}
	case float64:
		if sub > 0 && sub == math.Trunc(sub) {
			return int64(sub), nil
		}
	case json.Number:
		if id, err := sub.Int64(); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, ErrIdentityUnresolved
}

func parseUserID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
